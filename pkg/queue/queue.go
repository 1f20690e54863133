// Package queue 统一的事件信封 Message[Payload] = Header + Payload，使用 bytedance/sonic 编解码.
//
// 消息信封 JSON 结构
//
//	{
//	  "header": {
//	    "topic": "rv.folder.moved",
//	    "trace_id": "optional-trace-id",
//	    "producer": "reportvault",
//	    "actor": "alice@example.com",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布与订阅
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicFolderMoved, payload,
//	  queue.WithActor("alice@example.com"))
//	_ = client.Publish(ctx, queue.TopicFolderMoved, msg)
//
//	ch, _ := client.Subscribe(ctx, queue.TopicAuditRecorded)
//	for m := range ch {
//	    env, _ := queue.ParseWatermillMessage[queue.AuditPayload](m)
//	    m.Ack()
//	}
//
// 若需要业务级幂等，使用 WithMessageID 传入确定性 ID（如活动 ID 的哈希），JetStream 会按消息 ID 去重.
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"
)

// Option 设置事件头或消息属性.
type Option func(*options)

type options struct {
	header    EventHeader
	messageID string
}

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...Option) EventHeader {
	return buildOptions(topic, opts).header
}

func buildOptions(topic string, opts []Option) options {
	o := options{header: EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) Option { return func(o *options) { o.header.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) Option { return func(o *options) { o.header.Producer = p } }

// WithActor 设置 Actor.
func WithActor(a string) Option { return func(o *options) { o.header.Actor = a } }

// WithMessageID 使用确定性消息 ID 替代随机 UUID.
func WithMessageID(id string) Option { return func(o *options) { o.messageID = id } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 构造一个 watermill 消息，设置 ID 与元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...Option) (*message.Message, error) {
	o := buildOptions(topic, opts)

	data, err := Encode(Message[T]{Header: o.header, Payload: payload})
	if err != nil {
		return nil, err
	}

	id := o.messageID
	if id == "" {
		id = watermill.NewUUID()
	}

	msg := message.NewMessage(id, data)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("occurred_at", o.header.OccurredAt.Format(time.RFC3339Nano))

	if o.header.TraceID != "" {
		msg.Metadata.Set("trace_id", o.header.TraceID)
	}

	if o.header.Producer != "" {
		msg.Metadata.Set("producer", o.header.Producer)
	}

	if o.header.Actor != "" {
		msg.Metadata.Set("actor", o.header.Actor)
	}

	msg.Metadata.Set("version", o.header.Version)

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
