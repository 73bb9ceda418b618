package repositories

import "context"

type MessagePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}
