package service

import (
	"context"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"
)

// AuditSink receives audit entries. Callers treat it as fire-and-forget:
// an error is logged and never fails the operation being audited.
type AuditSink interface {
	Registrar(ctx context.Context, entry model.Auditoria) error
}

type auditoriaDirecta struct {
	repo repository.AuditoriaRepository
}

// NewAuditoriaDirecta writes entries synchronously through the repository.
// Used when no Redis queue is configured.
func NewAuditoriaDirecta(repo repository.AuditoriaRepository) AuditSink {
	return &auditoriaDirecta{repo: repo}
}

func (a *auditoriaDirecta) Registrar(ctx context.Context, entry model.Auditoria) error {
	return a.repo.Create(ctx, &entry)
}
