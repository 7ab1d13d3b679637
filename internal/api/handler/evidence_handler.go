package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/service"
	"eco-award/backend/pkg/response"
)

// EvidenceHandler 实证材料模块 HTTP 处理器
type EvidenceHandler struct {
	evidenceSvc service.EvidenceService
}

// NewEvidenceHandler 创建 EvidenceHandler
func NewEvidenceHandler(evidenceSvc service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceSvc: evidenceSvc}
}

// Submit 提交材料
// POST /api/v1/evidence
func (h *EvidenceHandler) Submit(c *gin.Context) {
	var req dto.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 教师固定提交到自己的学校；管理员可在请求体指定
	schoolID := req.SchoolID
	if role == model.RoleTeacher {
		schoolID = GetSchoolID(c)
	}

	evidence, err := h.evidenceSvc.Submit(c.Request.Context(), &req, schoolID, userID)
	if err != nil {
		h.handleEvidenceError(c, err)
		return
	}

	response.Created(c, evidence)
}

// Get 获取材料详情
// GET /api/v1/evidence/:id
func (h *EvidenceHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "材料ID不能为空")
		return
	}

	evidence, err := h.evidenceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEvidenceError(c, err)
		return
	}
	if !CheckSchoolAccess(c, evidence.SchoolID) {
		return
	}

	response.OK(c, evidence)
}

// ListBySchool 学校材料列表
// GET /api/v1/schools/:id/evidence
func (h *EvidenceHandler) ListBySchool(c *gin.Context) {
	schoolID := c.Param("id")
	if schoolID == "" {
		response.BadRequest(c, 12001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, schoolID) {
		return
	}

	var req dto.EvidenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	list, err := h.evidenceSvc.ListBySchool(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleEvidenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// UpdateFile 补写文件元数据（上传完成回调）
// PUT /api/v1/evidence/:id/file
func (h *EvidenceHandler) UpdateFile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "材料ID不能为空")
		return
	}

	var req dto.UpdateEvidenceFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	existing, err := h.evidenceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEvidenceError(c, err)
		return
	}
	if !CheckSchoolAccess(c, existing.SchoolID) {
		return
	}

	evidence, err := h.evidenceSvc.UpdateFileMetadata(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleEvidenceError(c, err)
		return
	}

	response.OK(c, evidence)
}

// handleEvidenceError 统一处理实证材料模块业务错误
func (h *EvidenceHandler) handleEvidenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEvidenceNotFound):
		response.NotFound(c, 12101, "实证材料不存在")
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 12102, "学校不存在")
	case errors.Is(err, service.ErrInvalidStage):
		response.BadRequest(c, 12103, "阶段不合法")
	case errors.Is(err, service.ErrSchoolIDRequired):
		response.BadRequest(c, 12104, "缺少学校ID")
	default:
		response.InternalError(c)
	}
}
