package rabbitmq

import (
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	failOn string
	closed bool
	bound  []string
}

func (c *fakeChannel) fail(step string) error {
	if c.failOn == step {
		return errors.New(step + " refused")
	}
	return nil
}

func (c *fakeChannel) Qos(int, int, bool) error { return c.fail("qos") }

func (c *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return c.fail("exchange")
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, c.fail("queue")
}

func (c *fakeChannel) QueueBind(name, _, _ string, _ bool, _ amqp.Table) error {
	if err := c.fail("bind"); err != nil {
		return err
	}
	c.bound = append(c.bound, name)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestDeclare_ClosesChannelOnError(t *testing.T) {
	for _, step := range []string{"qos", "exchange", "queue", "bind"} {
		t.Run(step, func(t *testing.T) {
			ch := &fakeChannel{failOn: step}

			err := declare(ch, NotificationQueues())
			require.Error(t, err)
			assert.Contains(t, err.Error(), step+" refused")
			assert.True(t, ch.closed)
		})
	}
}

func TestDeclare_KeepsChannelOpen(t *testing.T) {
	ch := &fakeChannel{}

	require.NoError(t, declare(ch, NotificationQueues()))
	assert.False(t, ch.closed)
	assert.Equal(t, []string{ReminderQueue}, ch.bound)
}
