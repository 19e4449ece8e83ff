package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/domain/events"
	"github.com/secondbrain/backend/internal/domain/notification"
)

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) PushToUser(userID string, payload any) error {
	return m.Called(userID, payload).Error(0)
}

type memRepo struct {
	items []*notification.Notification
}

func (r *memRepo) Save(n *notification.Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *memRepo) FindByUser(userID string, limit int) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestService_CreateAndPush(t *testing.T) {
	repo := &memRepo{}
	pusher := &mockPusher{}
	pusher.On("PushToUser", "alice", mock.AnythingOfType("*notification.NotificationDTO")).Return(errors.New("offline"))

	svc := NewService(repo, notification.NewService(), pusher)
	out, err := svc.CreateAndPush(&CreateNotificationDTO{UserID: "alice", Title: "Hi", Message: "m", Type: 2})
	require.NoError(t, err)
	assert.Equal(t, "warning", out.Type)
	assert.Len(t, repo.items, 1)
	pusher.AssertExpectations(t)

	_, err = svc.CreateAndPush(&CreateNotificationDTO{UserID: "alice"})
	assert.ErrorIs(t, err, notification.ErrInvalidTitle)
}

func TestService_HandleEvent(t *testing.T) {
	repo := &memRepo{}
	pusher := &mockPusher{}
	var pushed []*NotificationDTO
	pusher.On("PushToUser", "bob", mock.Anything).Run(func(args mock.Arguments) {
		pushed = append(pushed, args.Get(1).(*NotificationDTO))
	}).Return(nil)

	svc := NewService(repo, notification.NewService(), pusher)

	require.NoError(t, svc.HandleEvent(&events.SourceEvent{
		EventType: events.SourceIngested, User: "bob", ChatID: "c1",
		Title: "paper.pdf", SourceType: "pdf", Chunks: 3, EventTime: time.Now(),
	}))
	require.NoError(t, svc.HandleEvent(&events.SourceEvent{
		EventType: events.SourceIngestFailed, User: "bob", Title: "x.xls", Err: "legacy", EventTime: time.Now(),
	}))
	require.NoError(t, svc.HandleEvent(&events.ChatEvent{
		EventType: events.ChatRenamed, User: "bob", ChatID: "c1", Title: "Notes", EventTime: time.Now(),
	}))

	require.Len(t, pushed, 3)
	assert.Equal(t, "source.ingested", pushed[0].Event)
	assert.Equal(t, "c1", pushed[0].ChatID)
	assert.Contains(t, pushed[0].Message, "3 chunks")
	assert.Equal(t, "error", pushed[1].Type)
	assert.Equal(t, "Chat renamed to Notes", pushed[2].Message)

	recent, err := svc.Recent("bob", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
