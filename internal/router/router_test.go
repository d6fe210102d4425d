package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/config"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/dto"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/infra"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/middleware"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-secret"

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubVentaService struct {
	crearErr   error
	eliminada  bool
	lastReq    dto.CrearVentaRequest
	lastTenant uuid.UUID
}

var _ service.VentaService = (*stubVentaService)(nil)

func (s *stubVentaService) CrearVenta(_ context.Context, tenantID, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	s.lastReq = req
	s.lastTenant = tenantID
	if s.crearErr != nil {
		return nil, s.crearErr
	}
	return &dto.VentaResponse{ID: uuid.NewString(), UsuarioID: usuarioID.String(), Total: decimal.NewFromInt(232)}, nil
}

func (s *stubVentaService) EliminarVentaConReversion(_ context.Context, _, _, _ uuid.UUID) (bool, error) {
	return s.eliminada, nil
}

func (s *stubVentaService) ObtenerVenta(_ context.Context, _, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	return nil, apierror.NotFound("Venta", ventaID)
}

type stubCajaService struct {
	service.CajaService
}

func (s *stubCajaService) Abrir(_ context.Context, usuarioID, _ uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	return &dto.SesionCajaResponse{ID: uuid.NewString(), UsuarioID: usuarioID.String(), MontoInicial: req.MontoInicial, Abierta: true}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestServer(t *testing.T, ventas *stubVentaService) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := infra.NewSQLite(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", JWTSecret: testSecret}
	svcs := Services{Ventas: ventas, Caja: &stubCajaService{}}
	srv := httptest.NewServer(NewWithServices(context.Background(), cfg, svcs, db, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func tokenPara(t *testing.T, tenantID uuid.UUID, rol string) string {
	t.Helper()
	tok, err := middleware.FirmarToken(testSecret, uuid.New(), tenantID, rol, time.Hour)
	require.NoError(t, err)
	return tok
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, method, url, token string, body *bytes.Buffer) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, body)
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func ventaBody(productoID string) dto.CrearVentaRequest {
	return dto.CrearVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: productoID, Cantidad: 2}},
		Pagos: []dto.PagoRequest{{Metodo: "cash", Monto: decimal.NewFromInt(232)}},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	resp := do(t, http.MethodGet, srv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotContains(t, body, "audit_dlq")
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestCrearVenta_HTTP(t *testing.T) {
	ventas := &stubVentaService{}
	srv := newTestServer(t, ventas)
	tenant := uuid.New()

	resp := do(t, http.MethodPost, srv.URL+"/v1/ventas", tokenPara(t, tenant, "cajero"), jsonBody(t, ventaBody(uuid.NewString())))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var venta dto.VentaResponse
	decodeJSON(t, resp, &venta)
	assert.True(t, venta.Total.Equal(decimal.NewFromInt(232)))
	assert.Equal(t, tenant, ventas.lastTenant)
	require.Len(t, ventas.lastReq.Items, 1)
}

func TestCrearVenta_SinToken(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	resp := do(t, http.MethodPost, srv.URL+"/v1/ventas", "", jsonBody(t, ventaBody(uuid.NewString())))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCrearVenta_ValidacionDeEntrada(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	body := ventaBody("no-es-uuid")
	resp := do(t, http.MethodPost, srv.URL+"/v1/ventas", tokenPara(t, uuid.New(), "cajero"), jsonBody(t, body))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var verr apierror.ValidationError
	decodeJSON(t, resp, &verr)
	assert.Equal(t, "uuid", verr.Fields["CrearVentaRequest.Items[0].ProductoID"])
}

func TestCrearVenta_ErroresDeDominio(t *testing.T) {
	productoID := uuid.New()
	cases := []struct {
		name   string
		err    error
		status int
		kind   apierror.Kind
	}{
		{"stock", apierror.InsufficientStock(productoID, "Arroz"), http.StatusConflict, apierror.KindInsufficientStock},
		{"credito", apierror.CreditRequiresCustomer(), http.StatusUnprocessableEntity, apierror.KindCreditRequiresCustomer},
		{"no encontrado", apierror.NotFound("Producto", productoID), http.StatusNotFound, apierror.KindNotFound},
		{"concurrencia", apierror.Concurrency(nil), http.StatusConflict, apierror.KindConcurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubVentaService{crearErr: tc.err})
			resp := do(t, http.MethodPost, srv.URL+"/v1/ventas", tokenPara(t, uuid.New(), "cajero"), jsonBody(t, ventaBody(productoID.String())))
			assert.Equal(t, tc.status, resp.StatusCode)

			var env apierror.APIError
			decodeJSON(t, resp, &env)
			assert.Equal(t, tc.kind, env.Kind)
		})
	}
}

func TestCrearVenta_ErrorInternoNoSeFiltra(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{crearErr: gorm.ErrInvalidDB})
	resp := do(t, http.MethodPost, srv.URL+"/v1/ventas", tokenPara(t, uuid.New(), "cajero"), jsonBody(t, ventaBody(uuid.NewString())))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var env apierror.APIError
	decodeJSON(t, resp, &env)
	assert.Equal(t, "Error interno del servidor", env.Detail)
}

func TestEliminarVenta_HTTP(t *testing.T) {
	ventas := &stubVentaService{eliminada: true}
	srv := newTestServer(t, ventas)
	url := srv.URL + "/v1/ventas/" + uuid.NewString()

	resp := do(t, http.MethodDelete, url, tokenPara(t, uuid.New(), "cajero"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, http.MethodDelete, url, tokenPara(t, uuid.New(), "supervisor"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.EliminarVentaResponse
	decodeJSON(t, resp, &out)
	assert.True(t, out.Eliminada)

	ventas.eliminada = false
	resp = do(t, http.MethodDelete, url, tokenPara(t, uuid.New(), "administrador"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestObtenerVenta_NoEncontrada(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	resp := do(t, http.MethodGet, srv.URL+"/v1/ventas/"+uuid.NewString(), tokenPara(t, uuid.New(), "cajero"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/v1/ventas/xyz", tokenPara(t, uuid.New(), "cajero"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAbrirCaja_HTTP(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	resp := do(t, http.MethodPost, srv.URL+"/v1/caja/abrir", tokenPara(t, uuid.New(), "cajero"),
		jsonBody(t, dto.AbrirCajaRequest{MontoInicial: decimal.NewFromInt(500)}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sesion dto.SesionCajaResponse
	decodeJSON(t, resp, &sesion)
	assert.True(t, sesion.Abierta)
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(t, &stubVentaService{})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/ventas", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://caja.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
