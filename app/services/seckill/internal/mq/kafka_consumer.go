package mq

import (
	"context"
	"errors"
	"time"

	"TripHub/app/services/seckill/internal/svc"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/core/logx"
)

type (
	// MessageReader is satisfied by *kafka.Reader.
	MessageReader interface {
		FetchMessage(ctx context.Context) (kafka.Message, error)
		CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	}

	OrderConsumer struct {
		reader        MessageReader
		deadLetter    svc.MessageWriter
		materializer  *OrderMaterializer
		maxRetries    int
		retryInterval time.Duration
	}
)

func NewOrderConsumer(sc *svc.ServiceContext, reader MessageReader) *OrderConsumer {
	return &OrderConsumer{
		reader:        reader,
		deadLetter:    sc.DeadLetterWriter,
		materializer:  NewOrderMaterializer(sc),
		maxRetries:    sc.Config.Materializer.MaxRetries,
		retryInterval: sc.Config.Materializer.RetryInterval,
	}
}

// StartOrderConsumer blocks consuming the order topic until ctx is done.
func StartOrderConsumer(ctx context.Context, sc *svc.ServiceContext) error {
	kc := sc.Config.KafkaConf
	if len(kc.Broker) == 0 || kc.OrderTopic == "" || kc.Group == "" {
		return nil
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kc.Broker,
		GroupID:     kc.Group,
		Topic:       kc.OrderTopic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafka.FirstOffset,
	})
	defer r.Close()

	return NewOrderConsumer(sc, r).Consume(ctx)
}

func (c *OrderConsumer) Consume(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logx.WithContext(ctx).Errorw("fetch order intent failed", logx.Field("err", err))
			continue
		}
		// 死信写不进去时不提交，原地重投同一条消息
		for !c.process(ctx, m) {
			if ctx.Err() != nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.redeliverDelay()):
			}
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			logx.WithContext(ctx).Errorw("commit order intent failed",
				logx.Field("offset", m.Offset), logx.Field("err", err))
		}
	}
}

// process reports whether the offset may be committed: the intent was materialized
// or parked on the dead letter topic.
func (c *OrderConsumer) process(ctx context.Context, m kafka.Message) bool {
	logger := logx.WithContext(ctx)

	var intent OrderIntent
	if err := jsonx.Unmarshal(m.Value, &intent); err != nil || intent.OrderId <= 0 || intent.UserId <= 0 {
		logger.Errorw("bad order intent payload", logx.Field("offset", m.Offset), logx.Field("err", err))
		return c.sendDeadLetter(ctx, m) == nil
	}

	op := func() error {
		err := c.materializer.Handle(ctx, intent)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		logger.Errorw("materialize order failed",
			logx.Field("order_id", intent.OrderId), logx.Field("user_id", intent.UserId),
			logx.Field("activity_id", intent.ActivityId), logx.Field("lock_busy", errors.Is(err, ErrLockBusy)),
			logx.Field("err", err))
		return c.sendDeadLetter(ctx, m) == nil
	}
	return true
}

func (c *OrderConsumer) redeliverDelay() time.Duration {
	if c.retryInterval > 0 {
		return c.retryInterval
	}
	return time.Second
}

func (c *OrderConsumer) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if c.retryInterval > 0 {
		eb.InitialInterval = c.retryInterval
	}
	eb.MaxElapsedTime = 0
	retries := c.maxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

func (c *OrderConsumer) sendDeadLetter(ctx context.Context, m kafka.Message) error {
	if c.deadLetter == nil {
		logx.WithContext(ctx).Errorw("no dead letter topic, order intent dropped", logx.Field("offset", m.Offset))
		return nil
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	defer cancel()
	if err := c.deadLetter.WriteMessages(dctx, kafka.Message{Key: m.Key, Value: m.Value, Headers: m.Headers}); err != nil {
		logx.WithContext(ctx).Errorw("write dead letter failed", logx.Field("offset", m.Offset), logx.Field("err", err))
		return err
	}
	return nil
}
