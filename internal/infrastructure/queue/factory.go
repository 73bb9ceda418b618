package queue

import (
	"context"
	"fmt"

	"media-pipeline/internal/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
)

// NewBroker opens the transport selected by QUEUE_DRIVER.
func NewBroker(ctx context.Context, cfg *config.Config) (Broker, error) {
	switch cfg.Queue.Driver {
	case config.QueueDriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis bağlantısı başarısız: %w", err)
		}
		return NewRedisBroker(rdb, cfg.Worker.PollTimeout), nil

	case config.QueueDriverAMQP:
		return NewAMQPBroker(cfg.Queue.AMQPURL, cfg.Worker.Concurrency, cfg.Worker.PollTimeout)

	case config.QueueDriverSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Queue.SQSRegion))
		if err != nil {
			return nil, fmt.Errorf("AWS config yüklenemedi: %w", err)
		}
		client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.Queue.SQSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Queue.SQSEndpoint)
			}
		})
		return NewSQSBroker(client, cfg.Worker.PollTimeout), nil
	}
	return nil, fmt.Errorf("unsupported queue driver %q", cfg.Queue.Driver)
}
