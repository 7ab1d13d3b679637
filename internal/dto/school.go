package dto

// ── 学校模块请求 ──

// RegisterSchoolRequest 学校注册请求
type RegisterSchoolRequest struct {
	Name         string `json:"name"          binding:"required,max=200"`
	Region       string `json:"region"        binding:"omitempty,max=100"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
}

// SchoolListRequest 学校列表请求
type SchoolListRequest struct {
	PaginationRequest
	Region string `form:"region" binding:"omitempty,max=100"`
	Stage  string `form:"stage"  binding:"omitempty,oneof=inspire investigate act"`
}

// ── 学校模块响应 ──

// SchoolResponse 学校进度响应
type SchoolResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Region               string `json:"region,omitempty"`
	ContactEmail         string `json:"contact_email"`
	CurrentStage         string `json:"current_stage"`
	InspireCompleted     bool   `json:"inspire_completed"`
	InvestigateCompleted bool   `json:"investigate_completed"`
	ActCompleted         bool   `json:"act_completed"`
	AwardCompleted       bool   `json:"award_completed"`
	AuditQuizCompleted   bool   `json:"audit_quiz_completed"`
	CurrentRound         int    `json:"current_round"`
	RoundsCompleted      int    `json:"rounds_completed"`
	ProgressPercentage   int    `json:"progress_percentage"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// StageCountsResponse 单阶段材料计数
type StageCountsResponse struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
}

// EvidenceCountsResponse 学校当前轮次三阶段材料计数（面板用）
type EvidenceCountsResponse struct {
	SchoolID     string              `json:"school_id"`
	CurrentRound int                 `json:"current_round"`
	CurrentStage string              `json:"current_stage"`
	Inspire      StageCountsResponse `json:"inspire"`
	Investigate  StageCountsResponse `json:"investigate"`
	Act          StageCountsResponse `json:"act"`
	HasQuiz      bool                `json:"has_quiz"`
}

// CertificateResponse 证书响应
type CertificateResponse struct {
	ID                  string `json:"id"`
	SchoolID            string `json:"school_id"`
	Stage               string `json:"stage"`
	CertificateNumber   string `json:"certificate_number"`
	InspireApproved     int    `json:"inspire_approved"`
	InvestigateApproved int    `json:"investigate_approved"`
	ActApproved         int    `json:"act_approved"`
	IssuedAt            string `json:"issued_at"`
	IsActive            bool   `json:"is_active"`
}
