package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/events"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
)

type recordingRepo struct {
	created []*entities.Notification
	err     error
}

func (r *recordingRepo) Create(_ context.Context, n *entities.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

func (r *recordingRepo) ListForRecipient(context.Context, uint64, int) ([]*vo.NotificationVO, error) {
	return nil, nil
}

func (r *recordingRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func message(t *testing.T, event events.NotificationEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte("1"), Value: value}
}

func TestNotificationHandler_Persists(t *testing.T) {
	repo := &recordingRepo{}
	h := NewNotificationHandler(repo, zap.NewNop())
	postID := uint64(9)

	err := h.Handle(context.Background(), message(t, events.NotificationEvent{
		EventID: "e1", RecipientID: 1, SenderID: 2, PostID: &postID, Type: enums.NotificationComment,
	}))
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, uint64(1), repo.created[0].RecipientID)
	assert.Equal(t, uint64(2), repo.created[0].SenderID)
	assert.Equal(t, &postID, repo.created[0].PostID)
	assert.Equal(t, enums.NotificationComment, repo.created[0].Type)
}

func TestNotificationHandler_Malformed(t *testing.T) {
	repo := &recordingRepo{}
	h := NewNotificationHandler(repo, zap.NewNop())

	err := h.Handle(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	err = h.Handle(context.Background(), message(t, events.NotificationEvent{RecipientID: 1, SenderID: 2, Type: "poke"}))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	err = h.Handle(context.Background(), message(t, events.NotificationEvent{RecipientID: 0, SenderID: 2, Type: enums.NotificationFollow}))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	assert.Empty(t, repo.created)
}

func TestNotificationHandler_SkipsSelfAndDangling(t *testing.T) {
	repo := &recordingRepo{}
	h := NewNotificationHandler(repo, zap.NewNop())

	err := h.Handle(context.Background(), message(t, events.NotificationEvent{RecipientID: 3, SenderID: 3, Type: enums.NotificationLike}))
	require.NoError(t, err)
	assert.Empty(t, repo.created)

	repo.err = myErrors.ErrRepoNotFound
	err = h.Handle(context.Background(), message(t, events.NotificationEvent{RecipientID: 1, SenderID: 2, Type: enums.NotificationFollow}))
	assert.NoError(t, err)

	repo.err = errors.New("db down")
	err = h.Handle(context.Background(), message(t, events.NotificationEvent{RecipientID: 1, SenderID: 2, Type: enums.NotificationFollow}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedEvent)
}
