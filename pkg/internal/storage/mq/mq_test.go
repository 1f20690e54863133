package mq

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/configs"
)

func newGoChannelClient(t *testing.T) *Client {
	t.Helper()

	cfg := configs.Default().MQ
	cfg.Type = configs.MQTypeGoChannel

	c, err := New(context.Background(), &cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestRegisteredMQTypes(t *testing.T) {
	types := GetRegisteredMQTypes()
	assert.Contains(t, types, configs.MQTypeGoChannel)
	assert.Contains(t, types, configs.MQTypeNATS)
	assert.Contains(t, types, configs.MQTypeRedis)

	_, err := New(context.Background(), &configs.MQConfig{Type: "kafka"})
	assert.Error(t, err)
}

func TestGoChannelRoundTrip(t *testing.T) {
	c := newGoChannelClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := c.Subscribe(ctx, "rv.test")
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), []byte("hello"))
	require.NoError(t, c.Publish(ctx, "rv.test", msg))

	select {
	case got := <-ch:
		assert.Equal(t, "hello", string(got.Payload))
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}

	assert.NoError(t, c.HealthCheck(ctx))
}

func TestCloseIdempotent(t *testing.T) {
	c := newGoChannelClient(t)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestTopicPrefix(t *testing.T) {
	c := &Client{prefix: "tenant-a."}
	assert.Equal(t, "tenant-a.rv.folder.created", c.Topic("rv.folder.created"))
}
