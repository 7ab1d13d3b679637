package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/service"
	pkgerrors "eco-award/backend/pkg/errors"
	"eco-award/backend/pkg/response"
)

// ReviewHandler 审核模块 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// ReviewEvidence 审核单份材料
// POST /api/v1/evidence/:id/review
func (h *ReviewHandler) ReviewEvidence(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "材料ID不能为空")
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	evidence, err := h.reviewSvc.ReviewEvidence(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, evidence)
}

// BulkReviewEvidence 批量审核材料
// POST /api/v1/evidence/bulk-review
func (h *ReviewHandler) BulkReviewEvidence(c *gin.Context) {
	var req dto.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reviewSvc.BulkReviewEvidence(c.Request.Context(), &req, reviewerID)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, result)
}

// ReviewAudit 审核环境审计问卷
// POST /api/v1/audits/:id/review
func (h *ReviewHandler) ReviewAudit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "问卷ID不能为空")
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	audit, err := h.reviewSvc.ReviewAudit(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, audit)
}

// handleReviewError 统一处理审核模块业务错误
func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEvidenceNotFound):
		response.NotFound(c, 14101, "实证材料不存在")
	case errors.Is(err, service.ErrAuditNotFound):
		response.NotFound(c, 14102, "环境审计问卷不存在")
	case errors.Is(err, service.ErrAuditNotReviewable):
		response.UnprocessableEntity(c, 14103, "问卷尚未提交，不能审核")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14104, "学校进度已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
