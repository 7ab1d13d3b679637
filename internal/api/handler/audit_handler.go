package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/service"
	"eco-award/backend/pkg/response"
)

// AuditHandler 环境审计问卷模块 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// SaveDraft 保存问卷草稿
// PUT /api/v1/audits/draft
func (h *AuditHandler) SaveDraft(c *gin.Context) {
	var req dto.SaveAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
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

	schoolID := req.SchoolID
	if role == model.RoleTeacher {
		schoolID = GetSchoolID(c)
	}

	audit, err := h.auditSvc.SaveDraft(c.Request.Context(), &req, schoolID, userID)
	if err != nil {
		h.handleAuditError(c, err)
		return
	}

	response.OK(c, audit)
}

// Submit 提交问卷送审
// POST /api/v1/audits/submit
func (h *AuditHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	schoolID := GetSchoolID(c)
	if schoolID == "" {
		response.BadRequest(c, 13002, "缺少学校ID")
		return
	}

	audit, err := h.auditSvc.Submit(c.Request.Context(), schoolID, userID)
	if err != nil {
		h.handleAuditError(c, err)
		return
	}

	response.OK(c, audit)
}

// GetBySchool 获取学校最近一份问卷
// GET /api/v1/schools/:id/audit
func (h *AuditHandler) GetBySchool(c *gin.Context) {
	schoolID := c.Param("id")
	if schoolID == "" {
		response.BadRequest(c, 13001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, schoolID) {
		return
	}

	audit, err := h.auditSvc.GetBySchool(c.Request.Context(), schoolID)
	if err != nil {
		h.handleAuditError(c, err)
		return
	}

	response.OK(c, audit)
}

// handleAuditError 统一处理问卷模块业务错误
func (h *AuditHandler) handleAuditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuditNotFound):
		response.NotFound(c, 13101, "环境审计问卷不存在")
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 13102, "学校不存在")
	case errors.Is(err, service.ErrAuditAlreadyDecided):
		response.UnprocessableEntity(c, 13103, "问卷已有审核结论，不能再修改")
	case errors.Is(err, service.ErrAuditNotSubmittable):
		response.UnprocessableEntity(c, 13104, "问卷当前状态不能提交")
	case errors.Is(err, service.ErrSchoolIDRequired):
		response.BadRequest(c, 13105, "缺少学校ID")
	default:
		response.InternalError(c)
	}
}
