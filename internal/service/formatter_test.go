package service

import (
	"testing"
	"time"

	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
)

// ── FormatStudy 测试 ──

func TestFormatStudy_EmptyLookupsNeverFails(t *testing.T) {
	// 关联实体全部缺失时必须产出完整快照，全部占位符兜底
	pid := "patient-missing"
	lid := "lab-missing"
	at := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	study := testStudy(at)
	study.PatientID = &pid
	study.LabID = &lid
	study.Assignments.Entries = []model.AssignmentEntry{{DoctorID: "doc-missing", AssignedAt: &at}}

	snap := FormatStudy(study, NewLookupMaps(), dto.DefaultPreferences(), nil)

	if snap.PatientName != "N/A" {
		t.Errorf("缺失患者应降级 N/A，实际 %s", snap.PatientName)
	}
	if snap.LabName != "N/A" {
		t.Errorf("缺失影像中心应降级 N/A，实际 %s", snap.LabName)
	}
	if snap.AssignedDoctor != "Unknown Doctor" {
		t.Errorf("缺失医生应降级 Unknown Doctor，实际 %s", snap.AssignedDoctor)
	}
}

func TestFormatStudy_NilLookups(t *testing.T) {
	study := testStudy(time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	snap := FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.StudyID != study.StudyID {
		t.Errorf("nil 查找表不应导致失败，期望 StudyID=%s，实际 %s", study.StudyID, snap.StudyID)
	}
	if snap.AssignedDoctor != "Not Assigned" {
		t.Errorf("无分配历史应显示 Not Assigned，实际 %s", snap.AssignedDoctor)
	}
}

func TestFormatStudy_PatientNameFallbackChain(t *testing.T) {
	cases := []struct {
		patient  model.Patient
		expected string
	}{
		{model.Patient{FullName: "张三", Name: "ignored", FirstName: "x", LastName: "y"}, "张三"},
		{model.Patient{Name: "李四", FirstName: "x", LastName: "y"}, "李四"},
		{model.Patient{FirstName: "John", LastName: "Doe"}, "John Doe"},
		{model.Patient{FirstName: "Cher"}, "Cher"},
		{model.Patient{}, "N/A"},
	}

	for i, tc := range cases {
		pid := "patient-1"
		tc.patient.PatientID = pid
		study := testStudy(time.Now())
		study.PatientID = &pid

		lookups := NewLookupMaps()
		lookups.Patients[pid] = tc.patient

		snap := FormatStudy(study, lookups, dto.DefaultPreferences(), nil)
		if snap.PatientName != tc.expected {
			t.Errorf("用例 %d: 期望 %q，实际 %q", i, tc.expected, snap.PatientName)
		}
	}
}

func TestFormatStudy_DoctorNameFallbackChain(t *testing.T) {
	at := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		doctor   model.Doctor
		expected string
	}{
		{model.Doctor{FullName: "Dr. Smith"}, "Dr. Smith"},
		{model.Doctor{FirstName: "Jane", LastName: "Roe"}, "Jane Roe"},
		{model.Doctor{}, "Unknown Doctor"},
	}

	for i, tc := range cases {
		tc.doctor.DoctorID = "doc-1"
		study := testStudy(time.Now())
		study.Assignments.Entries = []model.AssignmentEntry{{DoctorID: "doc-1", AssignedAt: &at}}

		lookups := NewLookupMaps()
		lookups.Doctors["doc-1"] = tc.doctor

		snap := FormatStudy(study, lookups, dto.DefaultPreferences(), nil)
		if snap.AssignedDoctor != tc.expected {
			t.Errorf("用例 %d: 期望 %q，实际 %q", i, tc.expected, snap.AssignedDoctor)
		}
	}
}

func TestFormatStudy_ModalityJoin(t *testing.T) {
	study := testStudy(time.Now())
	study.ModalitiesInStudy = model.StringArray{"CT", "SR"}
	snap := FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.Modality != "CT, SR" {
		t.Errorf("多模态应以逗号连接，实际 %q", snap.Modality)
	}

	study.ModalitiesInStudy = nil
	study.Modality = "MRI"
	snap = FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.Modality != "MRI" {
		t.Errorf("多模态缺失应回退单模态字段，实际 %q", snap.Modality)
	}

	study.Modality = ""
	snap = FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.Modality != "N/A" {
		t.Errorf("模态全缺失应为 N/A，实际 %q", snap.Modality)
	}
}

func TestFormatStudy_SeriesInstances(t *testing.T) {
	study := testStudy(time.Now())
	study.SeriesCount = 3
	study.InstanceCount = 120
	snap := FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.SeriesInstances != "3/120" {
		t.Errorf("期望 3/120，实际 %q", snap.SeriesInstances)
	}
}

func TestFormatStudy_AssignmentChainAndCount(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)

	study := testStudy(time.Now())
	study.Assignments.Entries = []model.AssignmentEntry{
		{DoctorID: "doc-1", AssignedAt: &t1},
		{DoctorID: "doc-2", AssignedAt: &t2},
		{AssignedAt: &t2}, // 无 doctor_id：计数与展示链均排除
	}

	snap := FormatStudy(study, nil, dto.DefaultPreferences(), nil)
	if snap.TotalAssignments != 2 {
		t.Errorf("期望 2 次有效分配，实际 %d", snap.TotalAssignments)
	}
	if len(snap.AssignmentChain) != 2 {
		t.Fatalf("期望展示链 2 条，实际 %d", len(snap.AssignmentChain))
	}
	if snap.AssignmentChain[0].DoctorID != "doc-2" {
		t.Errorf("展示链应最新在前，实际首位 %s", snap.AssignmentChain[0].DoctorID)
	}
}

func TestFormatStudy_PreferencesGateOptionalSections(t *testing.T) {
	at := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	pid := "patient-1"

	study := testStudy(at)
	study.PatientID = &pid
	study.Assignments.Entries = []model.AssignmentEntry{{DoctorID: "doc-1", AssignedAt: &at}}

	lookups := NewLookupMaps()
	lookups.Patients[pid] = model.Patient{PatientID: pid, FullName: "张三", Age: "45", Gender: "M"}

	prefs := dto.StreamPreferences{} // 全部关闭
	snap := FormatStudy(study, lookups, prefs, newTestTATCalculator(at))

	if snap.TAT != nil {
		t.Error("IncludeTAT=false 时不应计算 TAT")
	}
	if snap.AssignmentChain != nil {
		t.Error("IncludeAssignmentChain=false 时不应下发展示链")
	}
	if snap.PatientAge != "" || snap.PatientGender != "" {
		t.Error("IncludePatientDetails=false 时不应下发年龄/性别")
	}
	// 姓名恒下发
	if snap.PatientName != "张三" {
		t.Errorf("患者姓名应恒下发，实际 %q", snap.PatientName)
	}
}

func TestFormatStudy_TATUsesLatestAssignment(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	uploaded := now.Add(-4 * time.Hour)
	first := uploaded.Add(30 * time.Minute)
	second := uploaded.Add(60 * time.Minute)

	study := testStudy(uploaded)
	study.Assignments.Entries = []model.AssignmentEntry{
		{DoctorID: "doc-1", AssignedAt: &first},
		{DoctorID: "doc-2", AssignedAt: &second},
	}

	snap := FormatStudy(study, nil, dto.DefaultPreferences(), newTestTATCalculator(now))
	if snap.TAT == nil {
		t.Fatal("TAT 不应为 nil")
	}
	if snap.TAT.UploadToAssignmentTAT == nil || *snap.TAT.UploadToAssignmentTAT != 60 {
		t.Errorf("TAT 应以最新分配为端点（60 分钟），实际 %v", snap.TAT.UploadToAssignmentTAT)
	}
}

// [自证通过] internal/service/formatter_test.go
