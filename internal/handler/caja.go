package handler

import (
	"net/http"
	"strconv"

	"cajaflow/internal/apierror"
	"cajaflow/internal/dto"
	"cajaflow/internal/middleware"
	"cajaflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CajaHandler exposes the register catalogue and the session lifecycle:
// apertura, movimientos, and cierre of the authenticated operator's session.
type CajaHandler struct {
	cajas       service.CajaService
	aperturas   service.AperturaService
	movimientos service.MovimientoService
	cierres     service.CierreService
}

func NewCajaHandler(cajas service.CajaService, aperturas service.AperturaService, movimientos service.MovimientoService, cierres service.CierreService) *CajaHandler {
	return &CajaHandler{cajas: cajas, aperturas: aperturas, movimientos: movimientos, cierres: cierres}
}

// ─── Registro de cajas ───────────────────────────────────────────────────────

// CrearCaja godoc
// @Summary Registra una nueva caja
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearCajaRequest true "Datos de la caja"
// @Success 201 {object} dto.CajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cajas [post]
func (h *CajaHandler) CrearCaja(c *gin.Context) {
	var req dto.CrearCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cajas.Crear(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarCajas godoc
// @Summary Lista todas las cajas registradas
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CajaResponse
// @Router /v1/cajas [get]
func (h *CajaHandler) ListarCajas(c *gin.Context) {
	resp, err := h.cajas.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetActiva godoc
// @Summary Activa o desactiva una caja
// @Tags cajas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la caja"
// @Success 200 {object} dto.CajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/activa [patch]
func (h *CajaHandler) SetActiva(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Activa *bool `json:"activa" validate:"required"`
	}
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cajas.SetActiva(c.Request.Context(), id, *req.Activa)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Ciclo de vida de la sesión ──────────────────────────────────────────────

// Abrir godoc
// @Summary Abre una sesión de caja
// @Description Un operador solo puede tener una sesión abierta a la vez.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.AperturaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.aperturas.Abrir(c.Request.Context(), actor, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Activa godoc
// @Summary Devuelve la sesión abierta del operador autenticado
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AperturaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/activa [get]
func (h *CajaHandler) Activa(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	resp, err := h.aperturas.Activa(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimiento godoc
// @Summary Registra un movimiento en la sesión abierta
// @Description El signo se deriva del tipo: GASTO y COMPRA restan, INGRESO suma.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/movimientos [post]
func (h *CajaHandler) Movimiento(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.movimientos.Registrar(c.Request.Context(), actor, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la sesión abierta y genera el arqueo
// @Description El cierre queda PENDIENTE hasta su aprobación por un supervisor.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Datos de cierre"
// @Success 201 {object} dto.CierreResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("No autenticado"))
		return
	}
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.cierres.Cerrar(c.Request.Context(), actor, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ─── Consultas ───────────────────────────────────────────────────────────────

// Reporte godoc
// @Summary Reporte de una sesión con su saldo esperado
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la apertura"
// @Success 200 {object} dto.AperturaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/aperturas/{id} [get]
func (h *CajaHandler) Reporte(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.aperturas.Reporte(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary Lista los movimientos de una sesión en orden cronológico
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de la apertura"
// @Success 200 {array} dto.MovimientoResponse
// @Router /v1/caja/aperturas/{id}/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.movimientos.ListarPorApertura(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial paginado de sesiones cerradas
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Success 200 {object} dto.AperturaListResponse
// @Router /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	page, limit := paginacion(c)
	resp, err := h.aperturas.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

func paginacion(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
