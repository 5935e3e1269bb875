package handler

import (
	"net/http"

	"cajaflow/internal/apierror"
	"cajaflow/internal/dto"
	"cajaflow/internal/middleware"
	"cajaflow/internal/model"
	"cajaflow/internal/service"

	"github.com/gin-gonic/gin"
)

// CierreHandler exposes the approval workflow over pending arqueos and the
// administrative daily sweep.
type CierreHandler struct {
	cierres    service.CierreService
	aprobacion service.AprobacionService
	barrido    service.BarridoService
}

func NewCierreHandler(cierres service.CierreService, aprobacion service.AprobacionService, barrido service.BarridoService) *CierreHandler {
	return &CierreHandler{cierres: cierres, aprobacion: aprobacion, barrido: barrido}
}

// Listar godoc
// @Summary Lista cierres por estado
// @Tags cierres
// @Produce json
// @Security BearerAuth
// @Param estado query string false "PENDIENTE | CONSOLIDADA | RECHAZADA (default PENDIENTE)"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.CierreListResponse
// @Router /v1/cierres [get]
func (h *CierreHandler) Listar(c *gin.Context) {
	estado := c.DefaultQuery("estado", model.CierrePendiente)
	switch estado {
	case model.CierrePendiente, model.CierreConsolidada, model.CierreRechazada:
	default:
		c.JSON(http.StatusBadRequest, apierror.New("Estado inválido"))
		return
	}
	page, limit := paginacion(c)
	resp, err := h.aprobacion.ListarPorEstado(c.Request.Context(), estado, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Devuelve un cierre por ID
// @Tags cierres
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id} [get]
func (h *CierreHandler) Obtener(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.cierres.Obtener(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revisiones godoc
// @Summary Historial de revisiones de un cierre corregido
// @Tags cierres
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {array} dto.RevisionCierreResponse
// @Router /v1/cierres/{id}/revisiones [get]
func (h *CierreHandler) Revisiones(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.cierres.Revisiones(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprobar godoc
// @Summary Consolida un cierre pendiente
// @Tags cierres
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres/{id}/aprobar [post]
func (h *CierreHandler) Aprobar(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.aprobacion.Aprobar(c.Request.Context(), actor, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rechazar godoc
// @Summary Rechaza un cierre pendiente con motivo
// @Tags cierres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Param body body dto.RechazarCierreRequest true "Motivo del rechazo"
// @Success 200 {object} dto.CierreResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres/{id}/rechazar [post]
func (h *CierreHandler) Rechazar(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RechazarCierreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.aprobacion.Rechazar(c.Request.Context(), actor, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corregir godoc
// @Summary Corrige un cierre rechazado y lo reenvía a aprobación
// @Description Solo el dueño de la sesión puede corregir. La diferencia se
// @Description recalcula contra el monto esperado original del arqueo.
// @Tags cierres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Param body body dto.CorregirCierreRequest true "Nuevo conteo"
// @Success 200 {object} dto.CierreResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/cierres/{id}/corregir [post]
func (h *CierreHandler) Corregir(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CorregirCierreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.aprobacion.Corregir(c.Request.Context(), actor, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConsolidarLote godoc
// @Summary Consolida un lote de cierres pendientes en una sola transacción
// @Description Si algún cierre del lote no está PENDIENTE, el lote completo se aborta.
// @Tags cierres
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConsolidarLoteRequest true "IDs de cierres"
// @Success 200 {object} dto.ConsolidarLoteResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cierres/consolidar [post]
func (h *CierreHandler) ConsolidarLote(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	var req dto.ConsolidarLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.aprobacion.ConsolidarLote(c.Request.Context(), actor, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Barrido godoc
// @Summary Ejecuta el barrido diario de fin de jornada
// @Description Cierra y consolida de oficio toda sesión abierta en cajas
// @Description activas. Las fallas por caja se aíslan y se reportan sin
// @Description abortar el barrido completo.
// @Tags cierres
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BarridoResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/cierres/barrido [post]
func (h *CierreHandler) Barrido(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	resp, err := h.barrido.Ejecutar(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
