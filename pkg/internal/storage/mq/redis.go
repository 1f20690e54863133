package mq

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/reportvault/pkg/configs"
)

// RedisPublisher 基于 Redis Pub/Sub 的 Publisher，投递语义为至多一次.
type RedisPublisher struct {
	client *redis.Client
}

// RedisSubscriber Redis Subscriber 实现.
type RedisSubscriber struct {
	client  *redis.Client
	logger  watermill.LoggerAdapter
	buffer  int
	mu      sync.Mutex
	subs    []*redis.PubSub
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建 Redis Publisher & Subscriber，二者各持一个连接池.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	pubClient := redis.NewClient(opts)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()

		return nil, nil, err
	}

	buffer := int(cfg.GoChannel.OutputChannelBuffer)
	if buffer <= 0 {
		buffer = configs.DefaultChannelBuffer
	}

	sub := &RedisSubscriber{
		client:  redis.NewClient(opts),
		logger:  logger,
		buffer:  buffer,
		closeCh: make(chan struct{}),
	}

	return &RedisPublisher{client: pubClient}, sub, nil
}

// Publish 实现 Publisher 接口，只传递 payload.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(msg.Context(), topic, []byte(msg.Payload)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Ping 探活.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close 实现 Publisher 接口.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Subscribe 实现 Subscriber 接口，每条消息等待 Ack/Nack 后再投递下一条.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("subscriber closed")
	}

	ps := s.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return nil, err
	}

	s.subs = append(s.subs, ps)
	out := make(chan *message.Message, s.buffer)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)

		in := ps.Channel()

		for {
			select {
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}

				if !s.deliver(ctx, out, topic, m) {
					return
				}
			}
		}
	}()

	return out, nil
}

// deliver 投递单条消息，返回 false 表示订阅应结束.
func (s *RedisSubscriber) deliver(ctx context.Context, out chan<- *message.Message, topic string, m *redis.Message) bool {
	msg := message.NewMessage(watermill.NewUUID(), []byte(m.Payload))
	msg.SetContext(ctx)

	select {
	case out <- msg:
	case <-s.closeCh:
		return false
	case <-ctx.Done():
		return false
	}

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		s.logger.Info("message nacked, redis pub/sub does not redeliver", watermill.LogFields{
			"topic": topic, "uuid": msg.UUID,
		})
	case <-s.closeCh:
		return false
	case <-ctx.Done():
		return false
	}

	return true
}

// Close 实现 Subscriber 接口.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)

	var err error
	for _, ps := range s.subs {
		err = errors.Join(err, ps.Close())
	}

	s.mu.Unlock()
	s.wg.Wait()

	return errors.Join(err, s.client.Close())
}
