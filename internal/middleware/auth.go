package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued by the surrounding platform; this service only verifies them.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

// Identidad returns the parsed user and tenant ids. ok is false when either
// claim is missing or malformed.
func (c *JWTClaims) Identidad() (usuarioID, tenantID uuid.UUID, ok bool) {
	u, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	t, err := uuid.Parse(c.TenantID)
	if err != nil || t == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	return u, t, true
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}
		if _, _, ok := claims.Identidad(); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token sin usuario o tienda"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// FirmarToken mints an HS256 token for the given identity. The platform's
// identity service issues production tokens; this is used by cmd/gentoken,
// seeding and tests.
func FirmarToken(secret string, usuarioID, tenantID uuid.UUID, rol string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   usuarioID.String(),
		TenantID: tenantID.String(),
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usuarioID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
