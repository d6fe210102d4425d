package worker

// replay_cron.go
// Background goroutine that periodically moves audit jobs from the DLQ back
// to the live queue. Uses the Circuit Breaker to stay idle while Redis or the
// database is failing.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 30 * time.Second
	replayBatchSize    = 10
)

// ReplayCronConfig holds all dependencies for the replay goroutine.
type ReplayCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Queue    string
	Interval time.Duration
}

// StartReplayCron launches a background goroutine that ticks every Interval
// (30s by default) and re-queues up to replayBatchSize DLQ entries.
// It respects the context for graceful shutdown.
func StartReplayCron(ctx context.Context, cfg ReplayCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = replayTickInterval
	}
	if cfg.Queue == "" {
		cfg.Queue = QueueAuditoria
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("replay_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("replay_cron: shutting down")
				return
			case <-ticker.C:
				replayDLQ(ctx, cfg)
			}
		}
	}()
}

// replayDLQ returns how many entries were moved back to the live queue.
func replayDLQ(ctx context.Context, cfg ReplayCronConfig) int {
	// If CB is open, skip entirely
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("replay_cron: circuit breaker is open, skipping tick")
		return 0
	}

	key := dlqKey(cfg.Queue)
	moved := 0
	for moved < replayBatchSize {
		raw, err := cfg.RDB.RPop(ctx, key).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("dlq_key", key).Msg("replay_cron: failed to pop DLQ entry")
			break
		}

		var entry EntradaDLQ
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || !entry.Reintentable() {
			// replaying would fail the same way; park it so the batch moves on
			log.Error().Str("dlq_key", key).Str("evento", entry.Evento).Str("ref_id", entry.RefID).
				Str("causa", entry.Causa).Msg("replay_cron: DLQ entry not replayable, parked")
			_ = cfg.RDB.LPush(ctx, parkedKey(cfg.Queue), raw).Err()
			continue
		}
		job := entry.Job
		job.Attempts = 0
		if err := pushJob(ctx, cfg.RDB, cfg.Queue, job); err != nil {
			log.Error().Err(err).Msg("replay_cron: failed to re-queue, restoring DLQ entry")
			_ = cfg.RDB.RPush(ctx, key, raw).Err()
			break
		}
		log.Debug().Str("evento", entry.Evento).Str("ref_id", entry.RefID).Msg("replay_cron: audit entry re-queued")
		moved++
	}
	if moved > 0 {
		log.Info().Int("count", moved).Str("queue", cfg.Queue).Msg("replay_cron: DLQ entries re-queued")
	}
	return moved
}
