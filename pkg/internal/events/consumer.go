package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/reportvault/pkg/configs"
	mqc "github.com/yeisme/reportvault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/queue"
)

// AuditHandler 把审计事件写入结构化日志.
// 无法解析的消息直接丢弃，避免毒消息反复重投.
func AuditHandler(logger zerolog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		m, err := queue.ParseAudit(msg)
		if err != nil {
			logger.Error().Err(err).Str("message_id", msg.UUID).Msg("drop malformed audit event")

			return nil
		}

		logger.Info().
			Str("actor", m.Header.Actor).
			Str("action", m.Payload.Action).
			Str("target_kind", m.Payload.TargetKind).
			Str("target_id", m.Payload.TargetID).
			Str("trace_id", m.Header.TraceID).
			Time("occurred_at", m.Header.OccurredAt).
			Msg(m.Payload.Description)

		return nil
	}
}

// NewRouter 创建进程内消费者路由；没有需要消费的主题时返回 nil.
func NewRouter(client *mqc.Client, cfg configs.EventsConfig) (*message.Router, error) {
	if client == nil || !cfg.Enabled || !cfg.Audit.Enabled || !cfg.Audit.Consume {
		return nil, nil
	}

	router, err := client.NewRouter()
	if err != nil {
		return nil, err
	}

	router.AddNoPublisherHandler(
		"audit_log",
		client.Topic(queue.TopicAuditRecorded),
		client.Subscriber(),
		AuditHandler(nlog.Component("audit")),
	)

	return router, nil
}

// RunConsumers 运行消费者直到 ctx 取消.
func RunConsumers(ctx context.Context, client *mqc.Client, cfg configs.EventsConfig) error {
	router, err := NewRouter(client, cfg)
	if err != nil {
		return fmt.Errorf("events router: %w", err)
	}

	if router == nil {
		<-ctx.Done()

		return nil
	}

	return router.Run(ctx)
}
