package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails:
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// identidad reads the acting user and tenant from the verified JWT claims.
func identidad(c *gin.Context) (usuarioID, tenantID uuid.UUID, ok bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, uuid.Nil, false
	}
	usuarioID, tenantID, ok = claims.Identidad()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token sin usuario o tienda"))
	}
	return usuarioID, tenantID, ok
}

// responderError hands err to middleware.ErrorHandler, which maps it to a status.
func responderError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
