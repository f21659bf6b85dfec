package model

// Doctor 医生表 — 对应 doctors
type Doctor struct {
	DoctorID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"doctor_id"`
	FullName       string `gorm:"type:varchar(255)" json:"full_name"`
	FirstName      string `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string `gorm:"type:varchar(100)" json:"last_name"`
	Email          string `gorm:"type:varchar(255)" json:"email"`
	Specialization string `gorm:"type:varchar(100)" json:"specialization"`
	BaseModel
}

// TableName 指定表名
func (Doctor) TableName() string { return "doctors" }

// [自证通过] internal/model/doctor.go
