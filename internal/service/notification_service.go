package service

import (
	"context"

	"go.uber.org/zap"

	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/repository"
)

// NotificationService 站内通知业务接口
type NotificationService interface {
	ListByUser(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	// MarkRead 标记已读，按 userID 限定只能操作自己的通知
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) ListByUser(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toNotificationResponse(&list[i]))
	}
	return resp, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, notificationID, userID); err != nil {
		s.logger.Error("标记通知已读失败",
			zap.String("id", notificationID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
