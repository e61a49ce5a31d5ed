package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payreminder/internal/notification"
)

type recordingSink struct {
	sent []notification.Notification
	err  error
}

func (s *recordingSink) Send(_ context.Context, n notification.Notification) error {
	s.sent = append(s.sent, n)
	return s.err
}

func TestFanout_Send(t *testing.T) {
	errSNS := errors.New("sns unavailable")

	inbox := &recordingSink{}
	topic := &recordingSink{err: errSNS}
	audit := &recordingSink{}

	n := notification.Notification{Kind: notification.KindPaymentReminder, IdempotencyKey: "reminder:1"}

	err := notification.Fanout{inbox, topic, audit}.Send(context.Background(), n)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSNS)

	assert.Len(t, inbox.sent, 1)
	assert.Len(t, topic.sent, 1)
	assert.Len(t, audit.sent, 1, "a failing sink must not stop the rest")
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, notification.Fanout{}.Send(context.Background(), notification.Notification{}))
}
