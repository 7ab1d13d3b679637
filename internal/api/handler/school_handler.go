package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/service"
	pkgerrors "eco-award/backend/pkg/errors"
	"eco-award/backend/pkg/response"
)

// SchoolHandler 学校模块 HTTP 处理器
type SchoolHandler struct {
	schoolSvc service.SchoolService
}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler(schoolSvc service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// Register 注册学校
// POST /api/v1/schools
func (h *SchoolHandler) Register(c *gin.Context) {
	var req dto.RegisterSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	school, err := h.schoolSvc.Register(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.Created(c, school)
}

// Get 获取学校进度详情
// GET /api/v1/schools/:id
func (h *SchoolHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, id) {
		return
	}

	school, err := h.schoolSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// List 学校列表
// GET /api/v1/schools
func (h *SchoolHandler) List(c *gin.Context) {
	var req dto.SchoolListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	schools, total, err := h.schoolSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OKPage(c, schools, total, req.GetPage(), req.GetPageSize())
}

// GetCounts 获取学校当前轮次材料计数（进度面板）
// GET /api/v1/schools/:id/counts
func (h *SchoolHandler) GetCounts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, id) {
		return
	}

	counts, err := h.schoolSvc.GetEvidenceCounts(c.Request.Context(), id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, counts)
}

// StartNewRound 开启新轮次
// POST /api/v1/schools/:id/rounds
func (h *SchoolHandler) StartNewRound(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, id) {
		return
	}

	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	school, err := h.schoolSvc.StartNewRound(c.Request.Context(), id, operatorID)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// ListCertificates 学校证书列表
// GET /api/v1/schools/:id/certificates
func (h *SchoolHandler) ListCertificates(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, id) {
		return
	}

	certs, err := h.schoolSvc.ListCertificates(c.Request.Context(), id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, gin.H{"list": certs})
}

// handleSchoolError 统一处理学校模块业务错误
func (h *SchoolHandler) handleSchoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 11101, "学校不存在")
	case errors.Is(err, service.ErrRoundNotEligible):
		response.UnprocessableEntity(c, 11102, "当前轮次尚未完成，不能开启新轮次")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 11103, "学校进度已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
