package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"eco-award/backend/config"
	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
	"eco-award/backend/pkg/mailer"
)

func seedNotification(t *testing.T, repo *repository.Repository, userID, title string) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID:  userID,
		Type:    model.NotificationEvidenceApproved,
		Title:   title,
		Content: "内容-" + title,
	}
	if err := repo.Notification.Create(context.Background(), n); err != nil {
		t.Fatalf("创建通知失败: %v", err)
	}
	return n
}

func TestNotificationService_ListByUser_ScopedAndPaginated(t *testing.T) {
	repo := newMockRepository()
	svc := NewNotificationService(repo, zap.NewNop())

	for i := 0; i < 3; i++ {
		seedNotification(t, repo, "teacher-a", "通知")
	}
	seedNotification(t, repo, "teacher-b", "别人的通知")

	req := &dto.NotificationListRequest{}
	req.Page = 1
	req.PageSize = 2

	list, total, err := svc.ListByUser(context.Background(), "teacher-a", req)
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 3 {
		t.Errorf("期望 total=3，实际=%d", total)
	}
	if len(list) != 2 {
		t.Errorf("第 1 页期望 2 条，实际=%d", len(list))
	}

	// 其他用户的通知不可见
	list, total, err = svc.ListByUser(context.Background(), "teacher-b", &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Errorf("teacher-b 应只见 1 条，实际 total=%d len=%d", total, len(list))
	}
}

func TestNotificationService_MarkRead_ScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewNotificationService(repo, zap.NewNop())

	n := seedNotification(t, repo, "teacher-a", "待读通知")

	// 他人标记不生效
	if err := svc.MarkRead(context.Background(), n.NotificationID, "teacher-b"); err != nil {
		t.Fatalf("MarkRead 不应报错: %v", err)
	}
	list, _, _ := repo.Notification.ListByUser(context.Background(), "teacher-a", 0, 10)
	if len(list) != 1 || list[0].IsRead {
		t.Fatal("非本人标记不应改变已读状态")
	}

	// 本人标记生效
	if err := svc.MarkRead(context.Background(), n.NotificationID, "teacher-a"); err != nil {
		t.Fatalf("MarkRead 失败: %v", err)
	}
	list, _, _ = repo.Notification.ListByUser(context.Background(), "teacher-a", 0, 10)
	if len(list) != 1 || !list[0].IsRead {
		t.Error("本人标记后应为已读")
	}
}

// 审核通过写入的站内通知应能被提交人查到
func TestNotificationService_ReviewProducesListableNotification(t *testing.T) {
	repo := newMockRepository()
	notifSvc := NewNotificationService(repo, zap.NewNop())
	// 邮件禁用（开发环境默认），只验证站内通知链路
	notifier := NewMailNotifier(repo, mailer.NewMailer(&config.MailConfig{}, zap.NewNop()), zap.NewNop())

	school := seedSchool(t, repo)
	submitter := "teacher-0001"
	ev := seedEvidence(t, repo, school.SchoolID, model.StageInspire, 1)
	ev.Status = model.EvidenceStatusApproved
	ev.CreatedBy = &submitter
	if err := repo.Evidence.Update(context.Background(), ev); err != nil {
		t.Fatalf("更新材料失败: %v", err)
	}

	notifier.EvidenceReviewed(context.Background(), ev, school)

	list, total, err := notifSvc.ListByUser(context.Background(), submitter, &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("审核通知应可被提交人查到，实际 total=%d len=%d", total, len(list))
	}
	if list[0].Type != model.NotificationEvidenceApproved {
		t.Errorf("通知类型应为批准，实际=%s", list[0].Type)
	}
	if list[0].RelatedID != ev.EvidenceID {
		t.Errorf("通知应关联材料 %s，实际=%s", ev.EvidenceID, list[0].RelatedID)
	}
}
