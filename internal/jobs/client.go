package jobs

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client submits jobs to the queue
type Client struct {
	client      *asynq.Client
	redis       *redis.Client
	maxAttempts int
}

// NewClient constructs an asynq client. Transmission tasks are allowed
// maxAttempts sends.
func NewClient(redisOpts asynq.RedisClientOpt, maxAttempts int) *Client {
	return &Client{
		client: asynq.NewClient(redisOpts),
		redis: redis.NewClient(&redis.Options{
			Addr:     redisOpts.Addr,
			Username: redisOpts.Username,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		}),
		maxAttempts: maxAttempts,
	}
}

// EnqueueExport enqueues an export task
func (c *Client) EnqueueExport(ctx context.Context, payload ExportPayload) (*asynq.TaskInfo, error) {
	task, err := NewExportTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// EnqueueTransmit enqueues a Peppol transmission task
func (c *Client) EnqueueTransmit(ctx context.Context, payload TransmitPayload) (*asynq.TaskInfo, error) {
	task, err := NewTransmitTask(payload, c.maxAttempts)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// Ping checks the broker is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close releases client resources
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return err
	}
	return c.redis.Close()
}
