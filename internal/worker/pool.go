package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"

	jobAuditoria = "auditoria"

	// MaxAuditAttempts is how many times a worker tries to persist an entry
	// before it goes to the DLQ.
	MaxAuditAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues audit entries into a Redis list; the worker pool
// dequeues them via BRPOP. It satisfies service.AuditSink.
type Dispatcher struct {
	rdb      *redis.Client
	cb       *infra.CircuitBreaker
	fallback repository.AuditoriaRepository
}

// NewDispatcher builds the queue-backed audit sink. fallback, when non-nil,
// receives the entry synchronously if the queue cannot take it.
func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker, fallback repository.AuditoriaRepository) *Dispatcher {
	return &Dispatcher{rdb: rdb, cb: cb, fallback: fallback}
}

// Registrar pushes one audit entry to the queue.
func (d *Dispatcher) Registrar(ctx context.Context, entry model.Auditoria) error {
	err := d.cb.Execute(func() error {
		return enqueue(ctx, d.rdb, QueueAuditoria, jobAuditoria, entry, 0)
	})
	if err == nil {
		return nil
	}
	if d.fallback == nil {
		return fmt.Errorf("encolar auditoría: %w", err)
	}
	log.Warn().Err(err).Str("evento", entry.Evento).Msg("auditoría: cola no disponible, escritura directa")
	return d.fallback.Create(ctx, &entry)
}

func enqueue(ctx context.Context, rdb *redis.Client, queue, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, rdb, queue, Job{Type: jobType, Payload: data, Attempts: attempts})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the audit queue.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, repo, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// brpopPausaInicial is the first wait after a failed BRPOP; it grows up to
// brpopPausaMax while Redis keeps failing.
var (
	brpopPausaInicial = 500 * time.Millisecond
	brpopPausaMax     = 15 * time.Second
)

func runWorker(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, id int) {
	pausa := backoff.NewExponentialBackOff()
	pausa.InitialInterval = brpopPausaInicial
	pausa.MaxInterval = brpopPausaMax
	pausa.Reset()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAuditoria).Result()
			if errors.Is(err, redis.Nil) {
				pausa.Reset()
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				espera := pausa.NextBackOff()
				log.Warn().Err(err).Int("worker", id).Dur("espera", espera).Msg("BRPOP falló")
				esperar(ctx, espera)
				continue
			}
			pausa.Reset()
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, repo, result[0], result[1])
		}
	}
}

// esperar sleeps for d or until ctx ends.
func esperar(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func processJob(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, queue, raw string) {
	job, err := handleJob(ctx, repo, raw)
	if err == nil {
		return
	}
	if errors.Is(err, errJobInvalido) {
		log.Error().Str("queue", queue).Err(err).Msg("job descartado")
		enviarADLQ(ctx, rdb, nuevaEntradaDLQ(queue, job, raw, err, time.Now()))
		return
	}

	job.Attempts++
	if job.Attempts >= MaxAuditAttempts {
		causa := fmt.Errorf("max attempts (%d) exceeded: %w", MaxAuditAttempts, err)
		enviarADLQ(ctx, rdb, nuevaEntradaDLQ(queue, job, raw, causa, time.Now()))
		return
	}
	log.Warn().Err(err).Str("queue", queue).Int("attempts", job.Attempts).Msg("job fallido, reencolando")
	if err := pushJob(ctx, rdb, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("no se pudo reencolar el job")
	}
}

var errJobInvalido = errors.New("job inválido")

// handleJob decodes one raw job and persists it. Malformed jobs return
// errJobInvalido and are never retried.
func handleJob(ctx context.Context, repo repository.AuditoriaRepository, raw string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return job, fmt.Errorf("%w: %v", errJobInvalido, err)
	}
	if job.Type != jobAuditoria {
		return job, fmt.Errorf("%w: tipo desconocido %q", errJobInvalido, job.Type)
	}
	var entry model.Auditoria
	if err := json.Unmarshal(job.Payload, &entry); err != nil {
		return job, fmt.Errorf("%w: %v", errJobInvalido, err)
	}
	if err := repo.Create(ctx, &entry); err != nil {
		return job, err
	}
	log.Debug().Str("evento", entry.Evento).Str("ref_id", entry.RefID.String()).Msg("auditoría persistida")
	return job, nil
}
