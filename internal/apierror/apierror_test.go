package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestErrorIs_PorKindYEntidad(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("crear venta: %w", InsufficientStock(id, "Arroz"))

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorIs(t, err, &Error{Kind: KindInsufficientStock, EntityID: id.String()})
	assert.NotErrorIs(t, err, &Error{Kind: KindInsufficientStock, EntityID: uuid.NewString()})
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIsConcurrency(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"concurrency kind", Concurrency(errors.New("x")), true},
		{"cancelled", context.Canceled, false},
		{"business", Validation("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsConcurrency(tc.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(CreditRequiresCustomer()))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("Producto", uuid.New())))
	assert.Equal(t, http.StatusConflict, HTTPStatus(InsufficientStock(uuid.New(), "x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Concurrency(nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("pq: boom")))
}

func TestFromError_NoFiltraInternos(t *testing.T) {
	env := FromError(errors.New("pq: relation \"ventas\" does not exist"))
	assert.Equal(t, "Error interno del servidor", env.Detail)
	assert.Empty(t, env.Kind)

	id := uuid.New()
	env = FromError(fmt.Errorf("wrap: %w", InsufficientStock(id, "Arroz")))
	assert.Equal(t, KindInsufficientStock, env.Kind)
	assert.Equal(t, id.String(), env.EntityID)
}
