package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/repository"
)

const (
	HistoryBatchSize    = 100
	HistoryBatchTimeout = 2 * time.Second
	HistoryPollTimeout  = 1 * time.Second
	// HistoryMaxAttempts is how many failed inserts a record survives before
	// it is dropped.
	HistoryMaxAttempts = 5
)

// HistoryWorker drains queued calculations into postgres in batches.
type HistoryWorker struct {
	repo  repository.CalculationRepository
	queue repository.HistoryQueue
	log   zerolog.Logger
}

func NewHistoryWorker(repo repository.CalculationRepository, queue repository.HistoryQueue, log zerolog.Logger) *HistoryWorker {
	return &HistoryWorker{
		repo:  repo,
		queue: queue,
		log:   log.With().Str("component", "history_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it still holds.
func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("HistoryWorker started")

	batch := make([]model.QueuedCalculation, 0, HistoryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= HistoryBatchSize || time.Since(lastFlush) >= HistoryBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.queue.Pop(ctx, HistoryPollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("queue pop failed")
					// back off so a dead redis does not spin the loop
					select {
					case <-ctx.Done():
					case <-time.After(HistoryPollTimeout):
					}
				}
				continue
			}
			if item == nil {
				continue
			}

			batch = append(batch, *item)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

// flushSafe copies the batch in one go. If that fails, rows are inserted
// one at a time. A row postgres rejects for its content is dropped; other
// failures go back on the queue until HistoryMaxAttempts is reached.
func (w *HistoryWorker) flushSafe(ctx context.Context, batch []model.QueuedCalculation) {
	if len(batch) == 0 {
		return
	}

	records := make([]model.CalculationRecord, len(batch))
	for i, item := range batch {
		records[i] = item.Record
	}

	err := w.repo.InsertBatch(ctx, records)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("calculations persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("batch insert failed, using fallback")

	var retry []model.QueuedCalculation
	for _, item := range batch {
		err := w.repo.Insert(ctx, item.Record)
		if err == nil {
			continue
		}

		item.Attempts++
		logEvt := w.log.Error().Err(err).Str("id", item.Record.ID.String()).Int("attempts", item.Attempts)
		switch {
		case repository.IsPermanent(err):
			logEvt.Msg("insert rejected, calculation dropped")
		case item.Attempts >= HistoryMaxAttempts:
			logEvt.Msg("insert retries exhausted, calculation dropped")
		default:
			logEvt.Msg("insert failed, requeueing")
			retry = append(retry, item)
		}
	}

	if len(retry) > 0 {
		if err := w.queue.Requeue(ctx, retry...); err != nil {
			w.log.Error().Err(err).Int("count", len(retry)).Msg("requeue failed, calculations dropped")
		}
	}
}
