package service

import (
	"eco-award/backend/internal/model"
)

// 本文件是进度引擎的纯计算核心：材料计数器与阶段晋级评估器。
// 两者都不触库、不产生副作用，审核入口在一次请求内按
// 计数 → 评估 → 落库 → （可能）发证 的顺序调用。

// ── 材料计数 ──

// StageCounts 单阶段材料计数
type StageCounts struct {
	Total    int
	Approved int
}

// EvidenceCounts 学校当前轮次的三阶段计数
// HasQuiz 表示该校存在已批准的环境审计问卷——注意问卷不按轮次过滤，
// 第 1 轮批准的问卷在后续轮次依然满足 investigate 的问卷计数项（既定产品行为）
type EvidenceCounts struct {
	Inspire     StageCounts
	Investigate StageCounts
	Act         StageCounts
	HasQuiz     bool
}

// CountEvidence 从学校全量材料中统计当前轮次的各阶段计数。
// 只统计 round_number 等于当前轮次的行——新轮次因此天然从零开始，
// 历史材料无需删除或迁移。对输入顺序无要求。
func CountEvidence(evidence []model.Evidence, currentRound int, hasApprovedAudit bool) EvidenceCounts {
	var counts EvidenceCounts

	for i := range evidence {
		ev := &evidence[i]
		if ev.RoundNumber != currentRound {
			continue
		}

		var sc *StageCounts
		switch ev.Stage {
		case model.StageInspire:
			sc = &counts.Inspire
		case model.StageInvestigate:
			sc = &counts.Investigate
		case model.StageAct:
			sc = &counts.Act
		default:
			continue
		}

		sc.Total++
		if ev.Status == model.EvidenceStatusApproved {
			sc.Approved++
		}
	}

	counts.HasQuiz = hasApprovedAudit
	return counts
}

// ── 晋级评估 ──

// Thresholds 各阶段达标所需的已批准材料数量
type Thresholds struct {
	InspireRequired     int
	InvestigateRequired int
	ActRequired         int
}

// DefaultThresholds 与奖项规则默认值一致：inspire 3 / investigate 2 / act 3
func DefaultThresholds() Thresholds {
	return Thresholds{InspireRequired: 3, InvestigateRequired: 2, ActRequired: 3}
}

// SchoolUpdate 晋级评估产出的学校行增量更新，nil 字段表示不变
type SchoolUpdate struct {
	CurrentStage         *string
	InspireCompleted     *bool
	InvestigateCompleted *bool
	ActCompleted         *bool
	AwardCompleted       *bool
	AuditQuizCompleted   *bool
	RoundsCompleted      *int
	ProgressPercentage   *int
}

// Changed 是否存在需要落库的变更
func (u *SchoolUpdate) Changed() bool {
	return u.CurrentStage != nil ||
		u.InspireCompleted != nil ||
		u.InvestigateCompleted != nil ||
		u.ActCompleted != nil ||
		u.AwardCompleted != nil ||
		u.AuditQuizCompleted != nil ||
		u.RoundsCompleted != nil ||
		u.ProgressPercentage != nil
}

// Apply 将增量更新写回学校行
func (u *SchoolUpdate) Apply(school *model.School) {
	if u.CurrentStage != nil {
		school.CurrentStage = *u.CurrentStage
	}
	if u.InspireCompleted != nil {
		school.InspireCompleted = *u.InspireCompleted
	}
	if u.InvestigateCompleted != nil {
		school.InvestigateCompleted = *u.InvestigateCompleted
	}
	if u.ActCompleted != nil {
		school.ActCompleted = *u.ActCompleted
	}
	if u.AwardCompleted != nil {
		school.AwardCompleted = *u.AwardCompleted
	}
	if u.AuditQuizCompleted != nil {
		school.AuditQuizCompleted = *u.AuditQuizCompleted
	}
	if u.RoundsCompleted != nil {
		school.RoundsCompleted = *u.RoundsCompleted
	}
	if u.ProgressPercentage != nil {
		school.ProgressPercentage = *u.ProgressPercentage
	}
}

// ProgressPercentage 由三个完成标记派生进度百分比：0 / 33 / 67 / 100
func ProgressPercentage(inspire, investigate, act bool) int {
	switch {
	case inspire && investigate && act:
		return 100
	case inspire && investigate:
		return 67
	case inspire:
		return 33
	default:
		return 0
	}
}

// EvaluateProgression 晋级评估器：对照计数与达标线，产出学校行的增量更新
// 以及是否应发证（certificateDue）。
//
// 规则按固定顺序独立评估，后面的规则可以依赖同一趟内前面规则刚置位的标记：
//  1. inspire 已批准数达标且尚未完成 → 置 inspire_completed，进入 investigate
//  2. investigate 已批准数 + 问卷(计 1) 达标且尚未完成 → 置 investigate_completed、
//     audit_quiz_completed，进入 act
//  3. act 已批准数达标且尚未完成 → 置 act_completed / award_completed，
//     rounds_completed 加一；仅第 1 轮触发发证（后续轮次完赛不再发证）
//  4. 按（可能刚更新的）完成标记重新派生进度百分比，有差异才输出
//
// 完成标记是单向阀：已完成的阶段不会因材料被驳回而回退，
// 因此相同输入重复评估必然得到空更新（幂等）。
func EvaluateProgression(school *model.School, counts EvidenceCounts, th Thresholds) (SchoolUpdate, bool) {
	var upd SchoolUpdate
	certificateDue := false

	inspireDone := school.InspireCompleted
	investigateDone := school.InvestigateCompleted
	actDone := school.ActCompleted

	// 1. inspire 阶段
	if !inspireDone && counts.Inspire.Approved >= th.InspireRequired {
		t := true
		stage := model.StageInvestigate
		upd.InspireCompleted = &t
		upd.CurrentStage = &stage
		inspireDone = true
	}

	// 2. investigate 阶段：已批准材料 + 已批准问卷（计 1 项）
	investigateItems := counts.Investigate.Approved
	if counts.HasQuiz {
		investigateItems++
	}
	if !investigateDone && investigateItems >= th.InvestigateRequired {
		t := true
		stage := model.StageAct
		upd.InvestigateCompleted = &t
		upd.AuditQuizCompleted = &t
		upd.CurrentStage = &stage
		investigateDone = true
	}

	// 3. act 阶段：完成即完赛
	if !actDone && counts.Act.Approved >= th.ActRequired {
		t := true
		rounds := school.RoundsCompleted + 1
		upd.ActCompleted = &t
		upd.AwardCompleted = &t
		upd.RoundsCompleted = &rounds
		actDone = true
		if school.CurrentRound == 1 {
			certificateDue = true
		}
	}

	// 4. 进度百分比重新派生
	pct := ProgressPercentage(inspireDone, investigateDone, actDone)
	if pct != school.ProgressPercentage {
		upd.ProgressPercentage = &pct
	}

	return upd, certificateDue
}
