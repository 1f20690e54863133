// Package events 把服务层的审计与活动通知转换为消息队列事件.
//
// Publisher 同时实现 service.AuditLogger 与 service.ActivityNotifier：
// 每次成功变更发布对应的领域事件（rv.folder.* / rv.report.*）与一条 rv.audit.recorded，
// 报告关联活动时发布 rv.activity.report_linked，并借助 KV 去重保证同一活动只通知一次.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/reportvault/pkg/cache"
	"github.com/yeisme/reportvault/pkg/configs"
	"github.com/yeisme/reportvault/pkg/internal/model"
	"github.com/yeisme/reportvault/pkg/internal/service"
	"github.com/yeisme/reportvault/pkg/internal/storage/kv"
	nlog "github.com/yeisme/reportvault/pkg/log"
	"github.com/yeisme/reportvault/pkg/metrics"
	"github.com/yeisme/reportvault/pkg/queue"
)

// Bus 事件发布目标，*mq.Client 实现了它.
type Bus interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// linkMark 去重键中保存的首次关联信息.
type linkMark struct {
	ReportID string    `json:"report_id"`
	LinkedAt time.Time `json:"linked_at"`
}

// Publisher 事件发布器.
type Publisher struct {
	bus    Bus
	cfg    configs.EventsConfig
	dedupe *cache.Cache
	logger zerolog.Logger
}

var (
	_ service.AuditLogger      = (*Publisher)(nil)
	_ service.ActivityNotifier = (*Publisher)(nil)
)

// NewPublisher 创建发布器，store 为 nil 时不做活动去重.
func NewPublisher(bus Bus, store kv.KVStore, cfg configs.EventsConfig) *Publisher {
	p := &Publisher{
		bus:    bus,
		cfg:    cfg,
		logger: nlog.Component("events"),
	}

	if store != nil {
		p.dedupe = cache.NewCache(store, dedupeNamespace)
	}

	return p
}

// dedupeNamespace 活动去重标记的键前缀，只使用 NATS KV 允许的字符.
const dedupeNamespace = "activity.linked"

// DedupeKey 活动去重标记在 KV 中的完整键.
func DedupeKey(activityID string) string {
	return dedupeNamespace + "." + activityID
}

// MessageID 活动事件的确定性消息 ID，JetStream 可据此二次去重.
func MessageID(activityID string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(activityID))
}

// Record 发布领域事件与审计事件.
func (p *Publisher) Record(ctx context.Context, e service.AuditEntry) error {
	if !p.cfg.Enabled {
		return nil
	}

	var errs error

	topic := "rv." + e.Action
	if e.Detail != nil && p.topicEnabled(topic) {
		errs = errors.Join(errs, p.publish(ctx, topic, e.Detail, e.Actor, ""))
	}

	if p.cfg.Audit.Enabled {
		payload := queue.AuditPayload{
			ID:          model.NewID(),
			Action:      e.Action,
			TargetKind:  e.TargetKind,
			TargetID:    e.TargetID,
			Description: e.Description,
		}
		errs = errors.Join(errs, p.publish(ctx, queue.TopicAuditRecorded, payload, e.Actor, ""))
	}

	return errs
}

// ReportLinked 通知活动协作方，同一活动只发布一次.
// 去重存储不可用时仍然发布，由消费方保证幂等.
func (p *Publisher) ReportLinked(ctx context.Context, link service.ActivityLink) error {
	if !p.cfg.Enabled || !p.cfg.Activity.Enabled {
		return nil
	}

	claimed := false

	if p.dedupe != nil {
		first, err := cache.SetOnce(ctx, p.dedupe, link.ActivityID, linkMark{ReportID: link.ReportID, LinkedAt: link.LinkedAt}, p.cfg.Activity.DedupeTTL)
		switch {
		case err != nil:
			p.logger.Warn().Err(err).Str("activity_id", link.ActivityID).Msg("activity dedupe unavailable, publishing anyway")
		case !first:
			p.logger.Debug().Str("activity_id", link.ActivityID).Str("report_id", link.ReportID).Msg("activity already linked")

			return nil
		default:
			claimed = true
		}
	}

	payload := queue.ActivityLinkedPayload{
		ActivityID: link.ActivityID,
		ReportID:   link.ReportID,
		UploadedBy: link.UploadedBy,
		LinkedAt:   link.LinkedAt,
	}

	err := p.publish(ctx, queue.TopicActivityReportLinked, payload, link.UploadedBy, MessageID(link.ActivityID))
	if err != nil && claimed {
		// 释放去重键，下次关联时重试
		if derr := p.dedupe.Delete(ctx, link.ActivityID); derr != nil {
			p.logger.Warn().Err(derr).Str("key", p.dedupe.Key(link.ActivityID)).Msg("failed to release activity dedupe key")
		}
	}

	return err
}

func (p *Publisher) publish(ctx context.Context, topic string, payload any, actor, msgID string) error {
	opts := []queue.Option{queue.WithProducer(configs.AppName), queue.WithActor(actor)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	if msgID != "" {
		opts = append(opts, queue.WithMessageID(msgID))
	}

	msg, err := queue.NewWatermillMessage(topic, payload, opts...)
	if err == nil {
		err = p.bus.Publish(ctx, topic, msg)
	}

	metrics.EventsPublished.WithLabelValues(topic, metrics.Result(err)).Inc()

	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

// topicEnabled 按配置判断领域事件是否发布.
func (p *Publisher) topicEnabled(topic string) bool {
	f, r := p.cfg.Folder, p.cfg.Report

	switch topic {
	case queue.TopicFolderCreated:
		return f.Created
	case queue.TopicFolderRenamed:
		return f.Renamed
	case queue.TopicFolderMoved:
		return f.Moved
	case queue.TopicFolderDeleted:
		return f.Deleted
	case queue.TopicFolderArchived:
		return f.Archived
	case queue.TopicFolderRestored:
		return f.Restored
	case queue.TopicReportCreated:
		return r.Created
	case queue.TopicReportUpdated:
		return r.Updated
	case queue.TopicReportMoved:
		return r.Moved
	case queue.TopicReportDeleted:
		return r.Deleted
	default:
		return false
	}
}
