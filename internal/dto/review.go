package dto

// ── 审核模块请求 ──

// ReviewRequest 单条审核请求（材料或问卷）
type ReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Notes  string `json:"notes"  binding:"omitempty,max=2000"`
}

// BulkReviewRequest 批量审核材料请求
type BulkReviewRequest struct {
	EvidenceIDs []string `json:"evidence_ids" binding:"required,min=1,max=100,dive,uuid"`
	Status      string   `json:"status"       binding:"required,oneof=approved rejected"`
	Notes       string   `json:"notes"        binding:"omitempty,max=2000"`
}

// ── 审核模块响应 ──

// BulkReviewItemResult 批量审核中单条材料的处理结果
// 单条失败不会中断批次，失败原因逐条返回
type BulkReviewItemResult struct {
	EvidenceID string `json:"evidence_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BulkReviewResponse 批量审核响应
type BulkReviewResponse struct {
	Results   []BulkReviewItemResult `json:"results"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
}
