package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	CajaID string `json:"caja_id" validate:"required,uuid"`
	// UsuarioID opens the session on behalf of another operator; requires
	// supervisor/administrador. Empty = the authenticated caller.
	UsuarioID     *string         `json:"usuario_id"     validate:"omitempty,uuid"`
	MontoInicial  decimal.Decimal `json:"monto_inicial"  validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

type MovimientoRequest struct {
	Tipo            string          `json:"tipo"             validate:"required,oneof=INGRESO GASTO COMPRA"`
	Monto           decimal.Decimal `json:"monto"            validate:"required,gt=0"`
	NumeroDocumento string          `json:"numero_documento" validate:"required,min=1,max=40"`
	Descripcion     string          `json:"descripcion"      validate:"required,min=3"`
	ComprobanteRef  *string         `json:"comprobante_ref"`
}

type CerrarCajaRequest struct {
	// UsuarioID closes another operator's session; requires elevated role.
	UsuarioID     *string         `json:"usuario_id"    validate:"omitempty,uuid"`
	MontoContado  decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
	// FechaCierre (RFC 3339) backdates the close to a prior business day.
	// Must not precede the apertura.
	FechaCierre *string `json:"fecha_cierre"`
}

type CrearCajaRequest struct {
	Nombre      string  `json:"nombre" validate:"required,min=2,max=60"`
	Descripcion *string `json:"descripcion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Activa      bool    `json:"activa"`
	CreatedAt   string  `json:"created_at"`
}

type MovimientoResponse struct {
	ID              string          `json:"id"`
	Tipo            string          `json:"tipo"`
	Monto           decimal.Decimal `json:"monto"`
	NumeroDocumento string          `json:"numero_documento"`
	Fecha           string          `json:"fecha"`
	Descripcion     string          `json:"descripcion"`
	ComprobanteRef  *string         `json:"comprobante_ref"`
	CierreID        *string         `json:"cierre_id"`
}

type AperturaResponse struct {
	ID           string          `json:"id"`
	CajaID       string          `json:"caja_id"`
	UsuarioID    string          `json:"usuario_id"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	// MontoEsperado is the running expected balance: monto_inicial plus all
	// operative movements so far (final for closed sessions).
	MontoEsperado decimal.Decimal `json:"monto_esperado"`
	Estado        string          `json:"estado"`
	Observaciones *string         `json:"observaciones"`
	OpenedAt      string          `json:"opened_at"`
	ClosedAt      *string         `json:"closed_at"`
	Cierre        *CierreResponse `json:"cierre,omitempty"`
}

type AperturaListResponse struct {
	Data  []AperturaResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
