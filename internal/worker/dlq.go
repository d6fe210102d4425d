package worker

// Audit jobs that can no longer be persisted end up in a per-queue dead
// letter list (dlq:<queue>). Each entry keeps the audit event and the sale it
// refers to, so a lost entry can be traced back, and records whether the job
// was malformed: malformed jobs are parked by the replay cron, never re-queued.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqPrefix = "dlq:"

func dlqKey(queue string) string    { return dlqPrefix + queue }
func parkedKey(queue string) string { return dlqPrefix + queue + ":parked" }

// EntradaDLQ is one dead audit job.
type EntradaDLQ struct {
	Queue     string    `json:"queue"`
	Job       Job       `json:"job"`
	Raw       string    `json:"raw,omitempty"` // original bytes, kept only for malformed jobs
	Evento    string    `json:"evento,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	RefID     string    `json:"ref_id,omitempty"`
	Causa     string    `json:"causa"`
	Invalido  bool      `json:"invalido"`
	FallidoEn time.Time `json:"fallido_en"`
}

// Reintentable reports whether replaying the entry can ever succeed.
func (e EntradaDLQ) Reintentable() bool {
	return !e.Invalido && e.Job.Type == jobAuditoria && len(e.Job.Payload) > 0
}

func nuevaEntradaDLQ(queue string, job Job, raw string, causa error, now time.Time) EntradaDLQ {
	e := EntradaDLQ{
		Queue:     queue,
		Job:       job,
		Causa:     causa.Error(),
		Invalido:  errors.Is(causa, errJobInvalido),
		FallidoEn: now.UTC(),
	}
	if e.Invalido {
		e.Raw = raw
	}
	var a model.Auditoria
	if len(job.Payload) > 0 && json.Unmarshal(job.Payload, &a) == nil {
		e.Evento = a.Evento
		if a.TenantID != uuid.Nil {
			e.TenantID = a.TenantID.String()
		}
		if a.RefID != uuid.Nil {
			e.RefID = a.RefID.String()
		}
	}
	return e
}

func enviarADLQ(ctx context.Context, rdb *redis.Client, e EntradaDLQ) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("queue", e.Queue).Msg("dlq: no se pudo serializar la entrada")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(e.Queue), data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey(e.Queue)).Str("ref_id", e.RefID).Msg("dlq: auditoría perdida")
		return
	}
	log.Warn().
		Str("queue", e.Queue).
		Str("evento", e.Evento).
		Str("ref_id", e.RefID).
		Bool("invalido", e.Invalido).
		Str("causa", e.Causa).
		Msg("dlq: auditoría movida a la cola de fallidos")
}

// DLQLength is the audit backlog waiting for replay, reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}
