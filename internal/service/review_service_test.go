package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
)

const testReviewerID = "reviewer-0001"

func newTestReviewService(repo *repository.Repository) ReviewService {
	return NewReviewService(repo, nil, NewNopNotifier(), DefaultThresholds(), "ECO", zap.NewNop())
}

func seedSchool(t *testing.T, repo *repository.Repository) *model.School {
	t.Helper()
	school := &model.School{
		Name:         "测试小学",
		ContactEmail: "green@example.com",
		CurrentStage: model.StageInspire,
		CurrentRound: 1,
	}
	if err := repo.School.Create(context.Background(), school); err != nil {
		t.Fatalf("创建学校失败: %v", err)
	}
	return school
}

func seedEvidence(t *testing.T, repo *repository.Repository, schoolID, stage string, round int) *model.Evidence {
	t.Helper()
	ev := &model.Evidence{
		SchoolID:    schoolID,
		Stage:       stage,
		RoundNumber: round,
		Title:       "材料-" + stage,
		Status:      model.EvidenceStatusPending,
		SubmittedAt: time.Now(),
	}
	if err := repo.Evidence.Create(context.Background(), ev); err != nil {
		t.Fatalf("创建材料失败: %v", err)
	}
	return ev
}

func approve(t *testing.T, svc ReviewService, evidenceID string) {
	t.Helper()
	_, err := svc.ReviewEvidence(context.Background(), evidenceID,
		&dto.ReviewRequest{Status: model.EvidenceStatusApproved}, testReviewerID)
	if err != nil {
		t.Fatalf("审核材料失败: %v", err)
	}
}

func getSchool(t *testing.T, repo *repository.Repository, id string) *model.School {
	t.Helper()
	school, err := repo.School.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("查询学校失败: %v", err)
	}
	return school
}

// ────────────────────── 完整晋级场景 ──────────────────────

// 3 份 inspire → 2 份 investigate → 3 份 act 逐份批准，
// 验证阶段依次推进、进度百分比递增、完赛后发证一次
func TestReviewService_FullProgressionScenario(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)

	// inspire：批 2 份不动，第 3 份触发晋级
	for i := 0; i < 2; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
		approve(t, svc, ev.EvidenceID)
	}
	got := getSchool(t, repo, school.SchoolID)
	if got.InspireCompleted || got.CurrentStage != model.StageInspire {
		t.Fatal("2 份批准材料不应完成 inspire 阶段")
	}

	ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
	approve(t, svc, ev.EvidenceID)
	got = getSchool(t, repo, school.SchoolID)
	if !got.InspireCompleted || got.CurrentStage != model.StageInvestigate {
		t.Fatalf("第 3 份批准后应进入 investigate 阶段，实际 stage=%s", got.CurrentStage)
	}
	if got.ProgressPercentage != 33 {
		t.Errorf("进度应为 33，实际=%d", got.ProgressPercentage)
	}

	// investigate：2 份材料达标
	for i := 0; i < 2; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInvestigate, 1)
		approve(t, svc, ev.EvidenceID)
	}
	got = getSchool(t, repo, school.SchoolID)
	if !got.InvestigateCompleted || got.CurrentStage != model.StageAct {
		t.Fatalf("investigate 达标后应进入 act 阶段，实际 stage=%s", got.CurrentStage)
	}
	if got.ProgressPercentage != 67 {
		t.Errorf("进度应为 67，实际=%d", got.ProgressPercentage)
	}

	// act：3 份材料完赛
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageAct, 1)
		approve(t, svc, ev.EvidenceID)
	}
	got = getSchool(t, repo, school.SchoolID)
	if !got.ActCompleted || !got.AwardCompleted {
		t.Fatal("act 达标后应完赛")
	}
	if got.RoundsCompleted != 1 || got.ProgressPercentage != 100 {
		t.Errorf("完赛后 rounds=1 progress=100，实际 rounds=%d progress=%d",
			got.RoundsCompleted, got.ProgressPercentage)
	}

	certs, err := repo.Certificate.ListBySchool(context.Background(), school.SchoolID)
	if err != nil {
		t.Fatalf("查询证书失败: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("完赛应签发恰好 1 张证书，实际=%d", len(certs))
	}
	if certs[0].Stage != model.StageAct || certs[0].ActApproved != 3 {
		t.Errorf("证书快照错误：stage=%s act_approved=%d", certs[0].Stage, certs[0].ActApproved)
	}
}

// 问卷批准 + 1 份 investigate 材料组合达标
func TestReviewService_ReviewAudit_CombinesWithEvidence(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)

	// 先走完 inspire
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
		approve(t, svc, ev.EvidenceID)
	}

	// 1 份 investigate 材料批准：仍差 1 项
	ev := seedEvidence(t, repo, school.SchoolID, model.StageInvestigate, 1)
	approve(t, svc, ev.EvidenceID)
	got := getSchool(t, repo, school.SchoolID)
	if got.InvestigateCompleted {
		t.Fatal("1 份材料无问卷不应完成 investigate")
	}

	// 提交并批准问卷：组合达标
	now := time.Now()
	audit := &model.AuditResponse{
		SchoolID:    school.SchoolID,
		Answers:     `{"q1":"yes"}`,
		Status:      model.AuditStatusSubmitted,
		SubmittedAt: &now,
	}
	if err := repo.Audit.Create(context.Background(), audit); err != nil {
		t.Fatalf("创建问卷失败: %v", err)
	}
	if _, err := svc.ReviewAudit(context.Background(), audit.AuditID,
		&dto.ReviewRequest{Status: "approved"}, testReviewerID); err != nil {
		t.Fatalf("审核问卷失败: %v", err)
	}

	got = getSchool(t, repo, school.SchoolID)
	if !got.InvestigateCompleted {
		t.Fatal("1 份材料 + 已批准问卷应完成 investigate")
	}
	if !got.AuditQuizCompleted {
		t.Error("问卷批准应置位 audit_quiz_completed")
	}
	if got.CurrentStage != model.StageAct {
		t.Errorf("应进入 act 阶段，实际 stage=%s", got.CurrentStage)
	}
}

func TestReviewService_ReviewAudit_DraftNotReviewable(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)

	audit := &model.AuditResponse{
		SchoolID: school.SchoolID,
		Status:   model.AuditStatusDraft,
	}
	if err := repo.Audit.Create(context.Background(), audit); err != nil {
		t.Fatalf("创建问卷失败: %v", err)
	}

	_, err := svc.ReviewAudit(context.Background(), audit.AuditID,
		&dto.ReviewRequest{Status: "approved"}, testReviewerID)
	if !errors.Is(err, ErrAuditNotReviewable) {
		t.Errorf("草稿问卷审核应返回 ErrAuditNotReviewable，实际=%v", err)
	}
}

// 驳回已批准的材料：计数下降但完成标记不回退
func TestReviewService_RejectAfterCompletion_NoRollback(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)

	var ids []string
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
		approve(t, svc, ev.EvidenceID)
		ids = append(ids, ev.EvidenceID)
	}
	got := getSchool(t, repo, school.SchoolID)
	if !got.InspireCompleted {
		t.Fatal("前置条件失败：inspire 应已完成")
	}

	// 改判一份为驳回
	if _, err := svc.ReviewEvidence(context.Background(), ids[0],
		&dto.ReviewRequest{Status: model.EvidenceStatusRejected, Notes: "材料不清晰"}, testReviewerID); err != nil {
		t.Fatalf("改判失败: %v", err)
	}

	got = getSchool(t, repo, school.SchoolID)
	if !got.InspireCompleted {
		t.Error("完成标记不应因改判回退")
	}
	if got.CurrentStage != model.StageInvestigate {
		t.Errorf("阶段不应回退，实际 stage=%s", got.CurrentStage)
	}
}

// 重复审核同一材料应幂等：第二次批准不产生进度变化也不重复发证
func TestReviewService_ReapproveIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)
	school.InspireCompleted = true
	school.InvestigateCompleted = true
	school.AuditQuizCompleted = true
	school.CurrentStage = model.StageAct
	school.ProgressPercentage = 67
	if err := repo.School.UpdateWithVersion(context.Background(), school); err != nil {
		t.Fatalf("准备学校状态失败: %v", err)
	}

	var last string
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageAct, 1)
		approve(t, svc, ev.EvidenceID)
		last = ev.EvidenceID
	}

	versionAfter := getSchool(t, repo, school.SchoolID).Version

	// 再批一次最后一份
	approve(t, svc, last)

	got := getSchool(t, repo, school.SchoolID)
	if got.Version != versionAfter {
		t.Error("无进度变化的重复审核不应再写学校行")
	}
	certs, _ := repo.Certificate.ListBySchool(context.Background(), school.SchoolID)
	if len(certs) != 1 {
		t.Errorf("证书应恰好 1 张，实际=%d", len(certs))
	}
}

func TestReviewService_ReviewEvidence_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)

	_, err := svc.ReviewEvidence(context.Background(), "no-such-id",
		&dto.ReviewRequest{Status: model.EvidenceStatusApproved}, testReviewerID)
	if !errors.Is(err, ErrEvidenceNotFound) {
		t.Errorf("期望 ErrEvidenceNotFound，实际=%v", err)
	}
}

// ────────────────────── 批量审核 ──────────────────────

func TestReviewService_BulkReview_PartialFailure(t *testing.T) {
	repo := newMockRepository()
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)

	ev1 := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
	ev2 := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)

	resp, err := svc.BulkReviewEvidence(context.Background(), &dto.BulkReviewRequest{
		EvidenceIDs: []string{ev1.EvidenceID, "no-such-id", ev2.EvidenceID},
		Status:      model.EvidenceStatusApproved,
	}, testReviewerID)
	if err != nil {
		t.Fatalf("批量审核失败: %v", err)
	}

	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("期望 2 成功 1 失败，实际 succeeded=%d failed=%d", resp.Succeeded, resp.Failed)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("结果条数应为 3，实际=%d", len(resp.Results))
	}
	if resp.Results[1].Success || resp.Results[1].Error == "" {
		t.Error("不存在的材料应标记失败并携带错误信息")
	}
	if !resp.Results[0].Success || !resp.Results[2].Success {
		t.Error("存在的材料应审核成功")
	}
}

// ────────────────────── 发证唯一约束容错 ──────────────────────

// staleExistsCertRepo 模拟并发窗口：存在性检查读不到刚被并发方插入的证书
type staleExistsCertRepo struct {
	repository.CertificateRepository
}

func (r *staleExistsCertRepo) Exists(context.Context, string, string) (bool, error) {
	return false, nil
}

// 存在性检查漏过后，插入撞上 (school_id, stage) 唯一约束应视作已签发，
// 审核本身不报错，证书也不会重复
func TestReviewService_IssueCertificate_DuplicateInsertTolerated(t *testing.T) {
	repo := newMockRepository()
	repo.Certificate = &staleExistsCertRepo{CertificateRepository: repo.Certificate}
	svc := newTestReviewService(repo)
	school := seedSchool(t, repo)
	school.InspireCompleted = true
	school.InvestigateCompleted = true
	school.AuditQuizCompleted = true
	school.CurrentStage = model.StageAct
	school.ProgressPercentage = 67
	if err := repo.School.UpdateWithVersion(context.Background(), school); err != nil {
		t.Fatalf("准备学校状态失败: %v", err)
	}

	// 并发方已抢先签发
	preexisting := &model.Certificate{
		SchoolID:          school.SchoolID,
		Stage:             model.StageAct,
		CertificateNumber: "ECO-20260101000000-existing",
		IssuedAt:          time.Now(),
		IsActive:          true,
	}
	if err := repo.Certificate.Create(context.Background(), preexisting); err != nil {
		t.Fatalf("预置证书失败: %v", err)
	}

	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageAct, 1)
		approve(t, svc, ev.EvidenceID)
	}

	got := getSchool(t, repo, school.SchoolID)
	if !got.AwardCompleted {
		t.Fatal("act 达标后应完赛")
	}
	certs, err := repo.Certificate.ListBySchool(context.Background(), school.SchoolID)
	if err != nil {
		t.Fatalf("查询证书失败: %v", err)
	}
	if len(certs) != 1 {
		t.Errorf("唯一约束冲突应静默跳过，证书数=%d", len(certs))
	}
}

// ────────────────────── 新轮次隔离 ──────────────────────

// 完赛开新轮后：第 1 轮材料不计入、第 2 轮完赛不发证、问卷跨轮仍计数
func TestReviewService_SecondRound_IsolationAndNoCertificate(t *testing.T) {
	repo := newMockRepository()
	reviewSvc := newTestReviewService(repo)
	schoolSvc := NewSchoolService(repo, zap.NewNop())
	school := seedSchool(t, repo)

	// 第 1 轮完整走完（含问卷）
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
		approve(t, reviewSvc, ev.EvidenceID)
	}
	now := time.Now()
	audit := &model.AuditResponse{
		SchoolID: school.SchoolID, Answers: "{}",
		Status: model.AuditStatusSubmitted, SubmittedAt: &now,
	}
	if err := repo.Audit.Create(context.Background(), audit); err != nil {
		t.Fatalf("创建问卷失败: %v", err)
	}
	if _, err := reviewSvc.ReviewAudit(context.Background(), audit.AuditID,
		&dto.ReviewRequest{Status: "approved"}, testReviewerID); err != nil {
		t.Fatalf("审核问卷失败: %v", err)
	}
	ev := seedEvidence(t, repo, school.SchoolID, model.StageInvestigate, 1)
	approve(t, reviewSvc, ev.EvidenceID)
	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageAct, 1)
		approve(t, reviewSvc, ev.EvidenceID)
	}

	got := getSchool(t, repo, school.SchoolID)
	if !got.AwardCompleted {
		t.Fatal("前置条件失败：第 1 轮应已完赛")
	}

	// 开启第 2 轮
	if _, err := schoolSvc.StartNewRound(context.Background(), school.SchoolID, "admin-1"); err != nil {
		t.Fatalf("开启新轮次失败: %v", err)
	}
	got = getSchool(t, repo, school.SchoolID)
	if got.CurrentRound != 2 || got.CurrentStage != model.StageInspire {
		t.Fatalf("第 2 轮应从 inspire 重新开始，实际 round=%d stage=%s", got.CurrentRound, got.CurrentStage)
	}
	if got.InspireCompleted || got.ProgressPercentage != 0 {
		t.Error("新轮次完成标记与进度应清零")
	}

	// 第 1 轮的材料不计入第 2 轮：批 1 份第 2 轮材料不会晋级
	ev = seedEvidence(t, repo, school.SchoolID, model.StageInspire, 2)
	approve(t, reviewSvc, ev.EvidenceID)
	got = getSchool(t, repo, school.SchoolID)
	if got.InspireCompleted {
		t.Error("第 1 轮批准的材料不应计入第 2 轮")
	}

	// 第 2 轮走完：问卷跨轮计数，investigate 只需 1 份新材料
	for i := 0; i < 2; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 2)
		approve(t, reviewSvc, ev.EvidenceID)
	}
	ev = seedEvidence(t, repo, school.SchoolID, model.StageInvestigate, 2)
	approve(t, reviewSvc, ev.EvidenceID)
	got = getSchool(t, repo, school.SchoolID)
	if !got.InvestigateCompleted {
		t.Fatal("第 1 轮批准的问卷应继续参与第 2 轮 investigate 达标")
	}

	for i := 0; i < 3; i++ {
		ev := seedEvidence(t, repo, school.SchoolID, model.StageAct, 2)
		approve(t, reviewSvc, ev.EvidenceID)
	}
	got = getSchool(t, repo, school.SchoolID)
	if !got.AwardCompleted || got.RoundsCompleted != 2 {
		t.Fatalf("第 2 轮应完赛，rounds=%d", got.RoundsCompleted)
	}

	certs, _ := repo.Certificate.ListBySchool(context.Background(), school.SchoolID)
	if len(certs) != 1 {
		t.Errorf("第 2 轮完赛不应再次发证，证书数=%d", len(certs))
	}
}
