package core

import "context"

// EventPublisher publishes domain events to downstream consumers.
// Publishing is best effort: callers log failures and move on.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}
