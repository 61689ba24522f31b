package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/model"
)

// ErrMalformedPayload is returned by Pop when a queued entry is not a
// QueuedCalculation. The entry has already been removed from the queue.
var ErrMalformedPayload = errors.New("malformed queue payload")

// HistoryQueue hands calculation records to the history worker.
type HistoryQueue interface {
	// Push enqueues fresh records.
	Push(ctx context.Context, records ...model.CalculationRecord) error
	// Requeue puts records back after a failed insert, keeping their attempt count.
	Requeue(ctx context.Context, items ...model.QueuedCalculation) error
	// Pop waits up to timeout for the next record. It returns nil, nil when
	// nothing arrived in time.
	Pop(ctx context.Context, timeout time.Duration) (*model.QueuedCalculation, error)
	// Len reports how many records are waiting to be persisted.
	Len(ctx context.Context) (int64, error)
}

type historyQueue struct {
	rdb *redis.Client
}

func NewHistoryQueue(rdb *redis.Client) HistoryQueue {
	return &historyQueue{rdb: rdb}
}

func (q *historyQueue) Push(ctx context.Context, records ...model.CalculationRecord) error {
	items := make([]model.QueuedCalculation, len(records))
	for i, rec := range records {
		items[i] = model.QueuedCalculation{Record: rec}
	}
	return q.Requeue(ctx, items...)
}

func (q *historyQueue) Requeue(ctx context.Context, items ...model.QueuedCalculation) error {
	if len(items) == 0 {
		return nil
	}
	payloads := make([]any, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		payloads = append(payloads, data)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistCalculationsQueue, payloads...).Err()
}

func (q *historyQueue) Pop(ctx context.Context, timeout time.Duration) (*model.QueuedCalculation, error) {
	res, err := q.rdb.BLPop(ctx, timeout, config.WorkerKey.PersistCalculationsQueue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}

	var item model.QueuedCalculation
	if err := json.Unmarshal([]byte(res[1]), &item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return &item, nil
}

func (q *historyQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.PersistCalculationsQueue).Result()
}
