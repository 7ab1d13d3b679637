package dto

// ── 实证材料模块请求 ──

// SubmitEvidenceRequest 提交材料请求
// Stage 省略时使用学校当前所处阶段；轮次固定取学校当前轮次
type SubmitEvidenceRequest struct {
	SchoolID    string `json:"school_id"    binding:"omitempty,uuid"`
	Stage       string `json:"stage"        binding:"omitempty,oneof=inspire investigate act"`
	Title       string `json:"title"        binding:"required,max=200"`
	Description string `json:"description"  binding:"omitempty,max=5000"`
	FileName    string `json:"file_name"    binding:"omitempty,max=255"`
	FileURL     string `json:"file_url"     binding:"omitempty,max=1024"`
	FileSize    int64  `json:"file_size"    binding:"omitempty,min=0"`
	ContentType string `json:"content_type" binding:"omitempty,max=100"`
}

// UpdateEvidenceFileRequest 补写文件元数据请求（对象存储上传完成后回调）
type UpdateEvidenceFileRequest struct {
	FileName    string `json:"file_name"    binding:"required,max=255"`
	FileURL     string `json:"file_url"     binding:"required,max=1024"`
	FileSize    int64  `json:"file_size"    binding:"omitempty,min=0"`
	ContentType string `json:"content_type" binding:"omitempty,max=100"`
}

// EvidenceListRequest 材料列表请求
type EvidenceListRequest struct {
	Round  *int   `form:"round"  binding:"omitempty,min=1"`
	Stage  string `form:"stage"  binding:"omitempty,oneof=inspire investigate act"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ── 实证材料模块响应 ──

// EvidenceResponse 材料详情响应
type EvidenceResponse struct {
	ID          string `json:"id"`
	SchoolID    string `json:"school_id"`
	Stage       string `json:"stage"`
	RoundNumber int    `json:"round_number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileURL     string `json:"file_url,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
	ReviewedAt  string `json:"reviewed_at,omitempty"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	ReviewNotes string `json:"review_notes,omitempty"`
}
