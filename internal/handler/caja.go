package handler

import (
	"net/http"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/dto"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, tenantID, ok := identidad(c)
	if !ok {
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, tenantID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion abierta del usuario (arqueo ciego opcional)
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto declarado"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, tenantID, ok := identidad(c)
	if !ok {
		return
	}

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, tenantID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un deposito o retiro manual en la caja abierta
// @Tags caja
// @Accept json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, tenantID, ok := identidad(c)
	if !ok {
		return
	}
	if err := h.svc.RegistrarMovimiento(c.Request.Context(), usuarioID, tenantID, req); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
