package mq

import (
	"context"
	"errors"
	"strconv"

	"TripHub/app/services/seckill/internal/svc"

	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/jsonx"
)

var ErrWriterMissing = errors.New("kafka writer not configured")

// PublishOrderIntent sends the intent keyed by user id, so one user's intents stay on one partition.
func PublishOrderIntent(ctx context.Context, sc *svc.ServiceContext, intent OrderIntent) error {
	if sc.KafkaWriter == nil {
		return ErrWriterMissing
	}
	body, err := jsonx.Marshal(intent)
	if err != nil {
		return err
	}

	timeout := sc.Config.KafkaConf.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	// 请求结束后仍需投递完成
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return sc.KafkaWriter.WriteMessages(pctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(intent.UserId, 10)),
		Value: body,
	})
}
