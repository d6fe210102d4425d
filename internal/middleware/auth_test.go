package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/privado", JWTAuth(testSecret), RequireRole("supervisor"), func(c *gin.Context) {
		claims := GetClaims(c)
		c.String(http.StatusOK, claims.TenantID)
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/privado", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_TokenValido(t *testing.T) {
	tenant := uuid.New()
	token, err := FirmarToken(testSecret, uuid.New(), tenant, "supervisor", time.Hour)
	require.NoError(t, err)

	w := get(newAuthEngine(), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.String(), w.Body.String())
}

func TestJWTAuth_Rechazos(t *testing.T) {
	r := newAuthEngine()
	expirado, err := FirmarToken(testSecret, uuid.New(), uuid.New(), "supervisor", -time.Minute)
	require.NoError(t, err)
	otraClave, err := FirmarToken("otra", uuid.New(), uuid.New(), "supervisor", time.Hour)
	require.NoError(t, err)
	sinTienda, err := FirmarToken(testSecret, uuid.New(), uuid.Nil, "supervisor", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, expirado).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, otraClave).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, sinTienda).Code)
}

func TestRequireRole_Prohibido(t *testing.T) {
	token, err := FirmarToken(testSecret, uuid.New(), uuid.New(), "cajero", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(newAuthEngine(), token).Code)
}
