package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/repository"

	"github.com/google/uuid"
)

// NotificationService reads the per-recipient notification feed. Writes happen
// only in the notification worker.
type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID, limit int) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, recipientID uuid.UUID, limit int) (*dto.NotificationListResponse, error) {
	ns, err := s.repo.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	resp := &dto.NotificationListResponse{
		Data:        make([]dto.NotificationResponse, 0, len(ns)),
		UnreadCount: unread,
	}
	for _, n := range ns {
		resp.Data = append(resp.Data, dto.NotificationResponse{
			ID:          n.ID.String(),
			Title:       n.Title,
			Description: n.Description,
			Type:        n.Type,
			IsRead:      n.IsRead,
			Metadata:    json.RawMessage(n.Metadata),
			CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		return ErrNotFound
	}
	return nil
}
