package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"eco-award/backend/internal/service"
	"eco-award/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchoolEvidence 导出学校材料审核记录 Excel
// GET /api/v1/schools/:id/evidence/export
func (h *ExportHandler) ExportSchoolEvidence(c *gin.Context) {
	schoolID := c.Param("id")
	if schoolID == "" {
		response.BadRequest(c, 15001, "学校ID不能为空")
		return
	}
	if !CheckSchoolAccess(c, schoolID) {
		return
	}

	buf, filename, err := h.exportSvc.ExportSchoolEvidence(c.Request.Context(), schoolID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSchoolNotFound):
			response.NotFound(c, 15101, "学校不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	// 文件名含中文，按 RFC 5987 编码
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
