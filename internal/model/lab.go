package model

// Lab 影像中心表 — 对应 labs
type Lab struct {
	LabID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lab_id"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Identifier string `gorm:"type:varchar(64)"  json:"identifier"`
	Location   string `gorm:"type:varchar(255)" json:"location"`
	BaseModel
}

// TableName 指定表名
func (Lab) TableName() string { return "labs" }

// [自证通过] internal/model/lab.go
