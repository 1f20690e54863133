// Package mq 提供基于 Watermill 库的统一消息队列操作接口。
// 通过工厂模式抽象不同的 MQ 实现：
//   - gochannel（进程内，默认）
//   - NATS（支持 JetStream）
//   - Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, &configs.GetConfig().MQ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello world"))
//	err = client.Publish(ctx, "rv.folder.created", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/reportvault/pkg/configs"
	nlog "github.com/yeisme/reportvault/pkg/log"
	pkgmetrics "github.com/yeisme/reportvault/pkg/metrics"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型（已排序）.
func GetRegisteredMQTypes() []configs.MQType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	mqType     configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	metrics    *metrics.PrometheusMetricsBuilder
	prefix     string

	closeOnce sync.Once
}

// New 按配置创建 MQ 客户端，启用指标时使用全局 Prometheus 注册表装饰 Publisher/Subscriber.
func New(ctx context.Context, cfg *configs.MQConfig) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLogger(nlog.Component("mq"))

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	c := &Client{mqType: cfg.Type, publisher: pub, subscriber: sub, logger: logger}

	if cfg.Type == configs.MQTypeNATS {
		c.prefix = cfg.NATS.SubjectPrefix
	}

	if cfg.Common.EnableMetrics && configs.GetConfig().Metrics.Enabled {
		builder := metrics.NewPrometheusMetricsBuilder(pkgmetrics.GetRegistry(), "reportvault", "mq")

		if c.publisher, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if c.subscriber, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		c.metrics = &builder
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return c, nil
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType {
	return c.mqType
}

// Topic 返回带主题前缀的实际主题名.
func (c *Client) Topic(topic string) string {
	return c.prefix + topic
}

// Publish 发布消息.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(c.Topic(topic), msgs...)
}

// Subscribe 订阅主题，ctx 取消时通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, c.Topic(topic))
}

// Subscriber 返回底层 Subscriber，供 Router 注册处理器.
func (c *Client) Subscriber() message.Subscriber {
	return c.subscriber
}

// NewRouter 创建使用本客户端日志与指标的 watermill Router.
func (c *Client) NewRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	if c.metrics != nil {
		c.metrics.AddPrometheusRouterMetrics(router)
	}

	return router, nil
}

// HealthCheck 对可探测的实现执行探活.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	if p, ok := c.publisher.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}

	return nil
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	var err error

	c.closeOnce.Do(func() {
		if c.publisher != nil {
			err = errors.Join(err, c.publisher.Close())
		}

		if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
			err = errors.Join(err, c.subscriber.Close())
		}
	})

	return err
}
