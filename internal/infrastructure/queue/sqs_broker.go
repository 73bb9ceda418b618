package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSBroker relies on the visibility timeout for redelivery and on
// ApproximateReceiveCount for the attempt number.
type SQSBroker struct {
	client      *sqs.Client
	pollTimeout time.Duration

	mu   sync.Mutex
	urls map[string]string
}

func NewSQSBroker(client *sqs.Client, pollTimeout time.Duration) *SQSBroker {
	return &SQSBroker{client: client, pollTimeout: pollTimeout, urls: make(map[string]string)}
}

func (b *SQSBroker) queueURL(ctx context.Context, queue string) (string, error) {
	b.mu.Lock()
	url, ok := b.urls[queue]
	b.mu.Unlock()
	if ok {
		return url, nil
	}

	out, err := b.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queue)})
	if err != nil {
		return "", fmt.Errorf("failed to resolve SQS queue %s: %w", queue, err)
	}

	b.mu.Lock()
	b.urls[queue] = aws.ToString(out.QueueUrl)
	b.mu.Unlock()
	return aws.ToString(out.QueueUrl), nil
}

func (b *SQSBroker) Publish(ctx context.Context, queue string, body []byte) error {
	url, err := b.queueURL(ctx, queue)
	if err != nil {
		return err
	}
	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("SQS send to %s failed: %w", queue, err)
	}
	return nil
}

func (b *SQSBroker) Receive(ctx context.Context, queue string) (*Delivery, error) {
	url, err := b.queueURL(ctx, queue)
	if err != nil {
		return nil, err
	}

	wait := int32(b.pollTimeout / time.Second)
	if wait > 20 {
		wait = 20
	}
	out, err := b.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     wait,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("SQS receive from %s failed: %w", queue, err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	m := out.Messages[0]
	attempt := 1
	if n, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil && n > 0 {
		attempt = n
	}
	return &Delivery{
		Queue:   queue,
		Body:    []byte(aws.ToString(m.Body)),
		Attempt: attempt,
		receipt: m.ReceiptHandle,
	}, nil
}

func (b *SQSBroker) Ack(ctx context.Context, d *Delivery) error {
	url, err := b.queueURL(ctx, d.Queue)
	if err != nil {
		return err
	}
	handle, _ := d.receipt.(*string)
	_, err = b.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: handle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete SQS message: %w", err)
	}
	return nil
}

// Retry leaves the message invisible until its visibility timeout expires.
func (b *SQSBroker) Retry(context.Context, *Delivery) error {
	return nil
}

// Release makes the message visible again right away. SQS still counts the
// next receive.
func (b *SQSBroker) Release(ctx context.Context, d *Delivery) error {
	url, err := b.queueURL(ctx, d.Queue)
	if err != nil {
		return err
	}
	handle, _ := d.receipt.(*string)
	_, err = b.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(url),
		ReceiptHandle:     handle,
		VisibilityTimeout: 0,
	})
	if err != nil {
		return fmt.Errorf("failed to release SQS message: %w", err)
	}
	return nil
}

func (b *SQSBroker) DeadLetter(ctx context.Context, d *Delivery) error {
	if err := b.Publish(ctx, PoisonQueue(d.Queue), d.Body); err != nil {
		return err
	}
	return b.Ack(ctx, d)
}

func (b *SQSBroker) Close() error {
	return nil
}
