package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RechazarCierreRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type CorregirCierreRequest struct {
	MontoContado  decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type ConsolidarLoteRequest struct {
	CierreIDs []string `json:"cierre_ids" validate:"required,min=1,dive,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreResponse struct {
	ID              string          `json:"id"`
	AperturaID      string          `json:"apertura_id"`
	CajaID          string          `json:"caja_id"`
	UsuarioID       string          `json:"usuario_id"`
	NumeroDocumento string          `json:"numero_documento"`
	FechaCierre     string          `json:"fecha_cierre"`
	MontoEsperado   decimal.Decimal `json:"monto_esperado"`
	MontoContado    decimal.Decimal `json:"monto_contado"`
	Diferencia      decimal.Decimal `json:"diferencia"`
	Observaciones   *string         `json:"observaciones"`
	Estado          string          `json:"estado"`
	AprobadorID     *string         `json:"aprobador_id"`
	FechaAprobacion *string         `json:"fecha_aprobacion"`
	MotivoRechazo   *string         `json:"motivo_rechazo"`
}

type CierreListResponse struct {
	Data  []CierreResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type RevisionCierreResponse struct {
	ID            string          `json:"id"`
	MontoContado  decimal.Decimal `json:"monto_contado"`
	Diferencia    decimal.Decimal `json:"diferencia"`
	Observaciones *string         `json:"observaciones"`
	MotivoRechazo *string         `json:"motivo_rechazo"`
	CreatedAt     string          `json:"created_at"`
}

type ConsolidarLoteResponse struct {
	Cantidad        int             `json:"cantidad"`
	TotalEsperado   decimal.Decimal `json:"total_esperado"`
	TotalContado    decimal.Decimal `json:"total_contado"`
	TotalDiferencia decimal.Decimal `json:"total_diferencia"`
}

// ─── Barrido diario ──────────────────────────────────────────────────────────

type BarridoError struct {
	CajaID  string `json:"caja_id"`
	Detalle string `json:"detalle"`
}

type BarridoResponse struct {
	CajasProcesadas  int `json:"cajas_procesadas"`
	CajasOmitidas    int `json:"cajas_omitidas"`
	SesionesCerradas int `json:"sesiones_cerradas"`
	// DiferenciaTotal is zero by construction today (forced counts); kept
	// for when the sweep admits real counts.
	DiferenciaTotal decimal.Decimal `json:"diferencia_total"`
	Errores         []BarridoError  `json:"errores"`
}
