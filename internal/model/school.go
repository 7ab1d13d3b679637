package model

// ── 阶段常量 ──

const (
	StageInspire     = "inspire"
	StageInvestigate = "investigate"
	StageAct         = "act"
)

// ValidStage 判断是否为合法阶段
func ValidStage(stage string) bool {
	switch stage {
	case StageInspire, StageInvestigate, StageAct:
		return true
	}
	return false
}

// School 学校表 — 对应 schools
//
// 进度不变量：
//   - 三个阶段完成标记在一个轮次内单调：置 true 后只有开启新轮次才会重置
//   - progress_percentage 永远由三个完成标记派生（0/33/67/100），不单独赋值
//   - current_round 从 1 开始；同一时刻只有一个进行中的轮次
type School struct {
	SchoolID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	Name                 string `gorm:"type:varchar(200);not null"                     json:"name"`
	Region               string `gorm:"type:varchar(100)"                              json:"region,omitempty"`
	ContactEmail         string `gorm:"type:varchar(255);not null"                     json:"contact_email"`
	CurrentStage         string `gorm:"type:varchar(20);not null;default:'inspire'"    json:"current_stage"` // inspire | investigate | act
	InspireCompleted     bool   `gorm:"not null;default:false"                         json:"inspire_completed"`
	InvestigateCompleted bool   `gorm:"not null;default:false"                         json:"investigate_completed"`
	ActCompleted         bool   `gorm:"not null;default:false"                         json:"act_completed"`
	AwardCompleted       bool   `gorm:"not null;default:false"                         json:"award_completed"`
	AuditQuizCompleted   bool   `gorm:"not null;default:false"                         json:"audit_quiz_completed"`
	CurrentRound         int    `gorm:"not null;default:1"                             json:"current_round"`
	RoundsCompleted      int    `gorm:"not null;default:0"                             json:"rounds_completed"`
	ProgressPercentage   int    `gorm:"not null;default:0"                             json:"progress_percentage"`
	VersionedModel
}

// TableName 指定表名
func (School) TableName() string { return "schools" }
