package notification

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/domain/notification"
	"github.com/secondbrain/backend/internal/infrastructure/log"
)

// Service 通知应用服务
type Service struct {
	domainRepo notification.Repository
	domainSvc  *notification.Service
	pusher     Pusher
	logger     *slog.Logger
}

// NewService 创建应用服务
func NewService(
	domainRepo notification.Repository,
	domainSvc *notification.Service,
	pusher Pusher,
) *Service {
	return &Service{
		domainRepo: domainRepo,
		domainSvc:  domainSvc,
		pusher:     pusher,
		logger:     log.NewModuleLogger("notification", "service"),
	}
}

// CreateAndPush 创建并推送通知
func (s *Service) CreateAndPush(dto *CreateNotificationDTO) (*NotificationDTO, error) {
	return s.createAndPush(dto, "")
}

func (s *Service) createAndPush(dto *CreateNotificationDTO, event events.EventType) (*NotificationDTO, error) {
	notif := &notification.Notification{
		ID:        uuid.New().String(),
		UserID:    dto.UserID,
		Title:     dto.Title,
		Message:   dto.Message,
		Type:      notification.Type(dto.Type),
		ChatID:    dto.ChatID,
		CreatedAt: time.Now(),
	}

	if err := s.domainSvc.Validate(notif); err != nil {
		return nil, err
	}
	if err := s.domainRepo.Save(notif); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}

	out := toDTO(notif, event)
	// 推送失败不影响保存，客户端重连后可通过历史刷新
	if err := s.pusher.PushToUser(notif.UserID, out); err != nil {
		s.logger.Warn("Failed to push notification", "user_id", notif.UserID, "error", err)
	}
	return out, nil
}

// Recent 最近的通知
func (s *Service) Recent(userID string, limit int) ([]*NotificationDTO, error) {
	items, err := s.domainRepo.FindByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*NotificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, toDTO(n, ""))
	}
	return out, nil
}

// Subscribe 订阅来源与会话事件并转为通知
func (s *Service) Subscribe(bus events.EventBus) func() {
	return bus.SubscribeMultiple([]events.EventType{
		events.SourceIngested,
		events.SourceIngestFailed,
		events.ChatRenamed,
		events.ChatDeleted,
	}, s)
}

// HandleEvent 实现 events.Handler
func (s *Service) HandleEvent(event events.Event) error {
	dto := &CreateNotificationDTO{UserID: event.UserID(), Type: int(notification.TypeInfo)}

	switch e := event.(type) {
	case *events.SourceEvent:
		dto.ChatID = e.ChatID
		if e.EventType == events.SourceIngestFailed {
			dto.Type = int(notification.TypeError)
			dto.Title = "Import failed"
			dto.Message = fmt.Sprintf("%s could not be imported: %s", e.Title, e.Err)
		} else {
			dto.Title = "Source ready"
			dto.Message = fmt.Sprintf("%s was imported as %s (%d chunks)", e.Title, e.SourceType, e.Chunks)
		}
	case *events.ChatEvent:
		dto.ChatID = e.ChatID
		if e.EventType == events.ChatDeleted {
			dto.Title = "Chat deleted"
			dto.Message = "A chat was deleted"
		} else {
			dto.Title = "Chat renamed"
			dto.Message = fmt.Sprintf("Chat renamed to %s", e.Title)
		}
	default:
		return nil
	}

	_, err := s.createAndPush(dto, event.Type())
	return err
}

// toDTO 转换为 DTO
func toDTO(n *notification.Notification, event events.EventType) *NotificationDTO {
	return &NotificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type.String(),
		Event:     string(event),
		ChatID:    n.ChatID,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
