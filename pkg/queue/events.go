package queue

import "github.com/ThreeDotsLabs/watermill/message"

// Publish 构造信封并发布到 topic.
func Publish[T any](pub message.Publisher, topic string, payload T, opts ...Option) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// ParseAudit 解析 rv.audit.recorded 消息.
func ParseAudit(msg *message.Message) (Message[AuditPayload], error) {
	return ParseWatermillMessage[AuditPayload](msg)
}

// ParseActivityLinked 解析 rv.activity.report_linked 消息.
func ParseActivityLinked(msg *message.Message) (Message[ActivityLinkedPayload], error) {
	return ParseWatermillMessage[ActivityLinkedPayload](msg)
}

// ParseFolderEvent 解析目录事件（除删除外）.
func ParseFolderEvent(msg *message.Message) (Message[FolderEventPayload], error) {
	return ParseWatermillMessage[FolderEventPayload](msg)
}
