package handler

import (
	"net/http"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/dto"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// CrearVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta atómica: descuenta stock, registra pagos, cuenta por cobrar y movimiento de caja.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) CrearVenta(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	usuarioID, tenantID, ok := identidad(c)
	if !ok {
		return
	}

	resp, err := h.svc.CrearVenta(c.Request.Context(), tenantID, usuarioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerVenta godoc
// @Summary      Obtener venta
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la venta"
// @Success      200  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	_, tenantID, ok := identidad(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), tenantID, id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarVenta godoc
// @Summary      Eliminar venta con reversión
// @Description  Restaura stock y elimina movimientos, cuentas por cobrar y la venta en una sola transacción.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la venta"
// @Success      200  {object} dto.EliminarVentaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) EliminarVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	usuarioID, tenantID, ok := identidad(c)
	if !ok {
		return
	}

	eliminada, err := h.svc.EliminarVentaConReversion(c.Request.Context(), id, usuarioID, tenantID)
	if err != nil {
		responderError(c, err)
		return
	}
	if !eliminada {
		c.JSON(http.StatusNotFound, dto.EliminarVentaResponse{Eliminada: false})
		return
	}
	c.JSON(http.StatusOK, dto.EliminarVentaResponse{Eliminada: true})
}
