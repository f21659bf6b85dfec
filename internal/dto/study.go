package dto

import "time"

// ── TAT 计算结果 ──

// TATResult 检查各阶段的报告时效（Turnaround Time）
//
// 数值单位为分钟（TotalTATDays 为天）。任一端点时间缺失或不可解析时，
// 对应字段为 nil —— 计算器绝不猜测替代时间戳。
// 负值原样透出（时钟偏移 / 时间戳乱序属于数据质量信号，不是错误）。
type TATResult struct {
	StudyToUploadTAT               *int64 `json:"study_to_upload_tat"`
	StudyToUploadTATFormatted      string `json:"study_to_upload_tat_formatted,omitempty"`
	UploadToAssignmentTAT          *int64 `json:"upload_to_assignment_tat"`
	UploadToAssignmentTATFormatted string `json:"upload_to_assignment_tat_formatted,omitempty"`
	AssignmentToReportTAT          *int64 `json:"assignment_to_report_tat"`
	AssignmentToReportTATFormatted string `json:"assignment_to_report_tat_formatted,omitempty"`
	StudyToReportTAT               *int64 `json:"study_to_report_tat"`
	StudyToReportTATFormatted      string `json:"study_to_report_tat_formatted,omitempty"`
	UploadToReportTAT              *int64 `json:"upload_to_report_tat"`
	UploadToReportTATFormatted     string `json:"upload_to_report_tat_formatted,omitempty"`
	TotalTATMinutes                *int64 `json:"total_tat_minutes"`
	TotalTATDays                   *int64 `json:"total_tat_days"`
	TotalTATFormatted              string `json:"total_tat_formatted,omitempty"`
	IsOverdue                      bool   `json:"is_overdue"`
	Phase                          string `json:"phase"`
}

// ── 快照 ──

// AssignmentView 已解析医生名称的分配记录（展示用）
type AssignmentView struct {
	DoctorID   string     `json:"doctor_id"`
	DoctorName string     `json:"doctor_name"`
	AssignedAt *time.Time `json:"assigned_at"`
}

// StudySnapshot 单个检查的传输就绪扁平记录
//
// 缺失的关联实体一律降级为文档化占位符（"N/A" / "Unknown Doctor" /
// "Not Assigned"），部分填充的检查也能产出完整可渲染的快照。
type StudySnapshot struct {
	StudyID          string `json:"study_id"`
	StudyInstanceUID string `json:"study_instance_uid"`
	AccessionNumber  string `json:"accession_number"`

	PatientName   string `json:"patient_name"`
	PatientAge    string `json:"patient_age,omitempty"`
	PatientGender string `json:"patient_gender,omitempty"`

	LabName  string `json:"lab_name"`
	Location string `json:"location"`

	Modality        string `json:"modality"`
	SeriesInstances string `json:"series_instances"` // "<series>/<instances>"

	WorkflowStatus string `json:"workflow_status"`
	Category       string `json:"category"`
	Priority       string `json:"priority"`

	StudyDate         string     `json:"study_date"`
	StudyTime         string     `json:"study_time,omitempty"`
	UploadedAt        time.Time  `json:"uploaded_at"`
	ReportFinalizedAt *time.Time `json:"report_finalized_at,omitempty"`

	AssignedDoctor     string           `json:"assigned_doctor"`
	AssignedAt         *time.Time       `json:"assigned_at,omitempty"`
	TotalAssignments   int              `json:"total_assignments"`
	AssignmentChain    []AssignmentView `json:"assignment_chain,omitempty"`
	IsLegacyAssignment bool             `json:"is_legacy_assignment"`

	TAT *TATResult `json:"tat,omitempty"`
}

// ── REST 请求 ──

// StudyListRequest 检查列表查询参数（REST 与推送流共用同一套过滤词汇）
type StudyListRequest struct {
	Category         string `form:"category"  binding:"omitempty,oneof=all pending inprogress completed"`
	Location         string `form:"location"  binding:"omitempty,max=255"`
	Modality         string `form:"modality"  binding:"omitempty,max=20"`
	DateRange        string `form:"date_range" binding:"omitempty,oneof=today last24h yesterday thisWeek thisMonth custom"`
	DateFrom         string `form:"date_from" binding:"omitempty"`
	DateTo           string `form:"date_to"   binding:"omitempty"`
	IncludeCompleted bool   `form:"include_completed_studies"`
	PaginationRequest
}

// ToFilters 转换为流过滤条件
func (r *StudyListRequest) ToFilters(maxStudies int) StreamFilters {
	f := DefaultFilters(maxStudies)
	if r.Category != "" {
		f.Category = r.Category
	}
	f.Location = r.Location
	f.Modality = r.Modality
	f.DateRange = r.DateRange
	f.IncludeCompleted = r.IncludeCompleted
	if r.DateFrom != "" {
		if t, err := time.Parse(time.RFC3339, r.DateFrom); err == nil {
			f.DateFrom = &t
		}
	}
	if r.DateTo != "" {
		if t, err := time.Parse(time.RFC3339, r.DateTo); err == nil {
			f.DateTo = &t
		}
	}
	size := r.GetPageSize()
	if size < maxStudies {
		f.MaxStudies = size
	}
	f.Offset = r.GetOffset()
	return f
}

// CreateStudyRequest 检查摄取请求（源系统 / 上游管道调用）
type CreateStudyRequest struct {
	StudyInstanceUID  string   `json:"study_instance_uid" binding:"required,max=128"`
	AccessionNumber   string   `json:"accession_number"   binding:"omitempty,max=64"`
	PatientID         *string  `json:"patient_id"         binding:"omitempty,uuid"`
	LabID             *string  `json:"lab_id"             binding:"omitempty,uuid"`
	WorkflowStatus    string   `json:"workflow_status"    binding:"omitempty,max=50"`
	Priority          string   `json:"priority"           binding:"omitempty,oneof=stat urgent routine"`
	Modality          string   `json:"modality"           binding:"omitempty,max=20"`
	ModalitiesInStudy []string `json:"modalities_in_study"`
	SeriesCount       int      `json:"series_count"       binding:"omitempty,min=0"`
	InstanceCount     int      `json:"instance_count"     binding:"omitempty,min=0"`
	StudyDate         string   `json:"study_date"         binding:"omitempty,max=32"`
	StudyTime         string   `json:"study_time"         binding:"omitempty,max=16"`
	Location          string   `json:"location"           binding:"omitempty,max=255"`
}

// AssignDoctorRequest 医生分配请求
type AssignDoctorRequest struct {
	DoctorID string `json:"doctor_id" binding:"required,uuid"`
}

// [自证通过] internal/dto/study.go
