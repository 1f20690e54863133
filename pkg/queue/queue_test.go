package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/queue"
)

func TestNewWatermillMessage(t *testing.T) {
	parent := "01HZX0000000000000000000AA"
	payload := queue.FolderEventPayload{
		Folder: queue.FolderRef{ID: "f1", Name: "Reports", ParentID: &parent, Status: "active"},
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFolderCreated, payload,
		queue.WithActor("alice"), queue.WithTraceID("t-1"), queue.WithMessageID("fixed-id"))
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", msg.UUID)
	assert.Equal(t, queue.TopicFolderCreated, msg.Metadata.Get("topic"))
	assert.Equal(t, "alice", msg.Metadata.Get("actor"))
	assert.Equal(t, "t-1", msg.Metadata.Get("trace_id"))

	env, err := queue.ParseFolderEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, "Reports", env.Payload.Folder.Name)
	require.NotNil(t, env.Payload.Folder.ParentID)
	assert.Equal(t, parent, *env.Payload.Folder.ParentID)
	assert.Equal(t, queue.PayloadVersionV1, env.Header.Version)
	assert.Equal(t, "alice", env.Header.Actor)
}

func TestRandomMessageIDs(t *testing.T) {
	a, err := queue.NewWatermillMessage(queue.TopicAuditRecorded, queue.AuditPayload{Action: "create"})
	require.NoError(t, err)

	b, err := queue.NewWatermillMessage(queue.TopicAuditRecorded, queue.AuditPayload{Action: "create"})
	require.NoError(t, err)

	assert.NotEqual(t, a.UUID, b.UUID)
}

func TestAllTopicsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, topic := range queue.AllTopics() {
		assert.False(t, seen[topic], topic)
		seen[topic] = true
	}
}
