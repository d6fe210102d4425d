package service

import (
	"context"
	"testing"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAuditoriaDirecta_Persiste(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditoriaRepository(db)
	sink := NewAuditoriaDirecta(repo)
	ctx := context.Background()
	tenant, ventaID := uuid.New(), uuid.New()

	require.NoError(t, sink.Registrar(ctx, model.Auditoria{
		TenantID: tenant, Evento: model.EventoVentaCreada, UsuarioID: uuid.New(),
		RefTipo: "venta", RefID: ventaID, Payload: datatypes.JSON(`{"total":"232"}`),
	}))
	require.NoError(t, sink.Registrar(ctx, model.Auditoria{
		TenantID: tenant, Evento: model.EventoVentaRevertida, UsuarioID: uuid.New(),
		RefTipo: "venta", RefID: ventaID,
	}))

	entries, err := repo.ListByRef(ctx, tenant, ventaID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	eventos := map[string]model.Auditoria{}
	for _, e := range entries {
		eventos[e.Evento] = e
	}
	require.Contains(t, eventos, model.EventoVentaCreada)
	require.Contains(t, eventos, model.EventoVentaRevertida)
	assert.JSONEq(t, `{"total":"232"}`, string(eventos[model.EventoVentaCreada].Payload))

	otra, err := repo.ListByRef(ctx, uuid.New(), ventaID)
	require.NoError(t, err)
	assert.Empty(t, otra)
}
