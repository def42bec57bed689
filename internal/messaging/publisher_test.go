package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublisherSubject(t *testing.T) {
	p := &Publisher{subject: "resultify.notifications"}

	assert.Equal(t, "resultify.notifications.u1", p.Subject("u1"))
	assert.Equal(t, "resultify.notifications", p.Subject(""))
	assert.NoError(t, (*Publisher)(nil).Close())
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", "resultify.notifications", nil)
	assert.Error(t, err)
}
