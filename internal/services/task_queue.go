package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/devtrackhq/devtrack/backend/internal/config"
	"github.com/devtrackhq/devtrack/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeInvitationEmail = "invitation:email"
)

// InvitationEmailTask identifies an invitation whose notification email
// should be dispatched. The payload is only the ID; the worker re-reads
// the invitation so stale data is never mailed out.
type InvitationEmailTask struct {
	InvitationID uint `json:"invitation_id"`
}

// TaskQueue defines the interface for invitation email dispatch.
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *InvitationEmailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *InvitationEmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInvitationEmail, payload)
	if _, err := q.client.Enqueue(t); err != nil {
		return err
	}
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error { return q.client.Close() }

// SyncQueue implements TaskQueue by processing tasks inline. Enqueue
// returns the processing error so the caller can surface it as a warning.
type SyncQueue struct {
	processor func(context.Context, *InvitationEmailTask) error
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function invoked for each enqueued task.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *InvitationEmailTask) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *InvitationEmailTask) error {
	if q.processor == nil {
		return nil
	}
	return q.processor(context.Background(), task)
}

func (q *SyncQueue) IsAsync() bool { return false }

func (q *SyncQueue) Close() error { return nil }
