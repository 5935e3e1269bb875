package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento. Egresos (GASTO, COMPRA) se almacenan con monto
// negativo; todo tipo no clasificado como egreso se almacena positivo.
// El tipo AJUSTE conserva el signo de la diferencia que lo origina.
const (
	MovimientoApertura = "APERTURA"
	MovimientoIngreso  = "INGRESO"
	MovimientoGasto    = "GASTO"
	MovimientoCompra   = "COMPRA"
	MovimientoAjuste   = "AJUSTE"
)

// EsEgreso reports whether tipo is an outflow operation whose amount must be
// stored negative. Any new tipo added above must be classified here —
// unclassified tipos default to inflow (positive).
func EsEgreso(tipo string) bool {
	return tipo == MovimientoGasto || tipo == MovimientoCompra
}

// MovimientoCaja is an immutable event in the cash register ledger.
// Movements are NEVER modified or deleted — corrections create new
// offsetting entries.
type MovimientoCaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AperturaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo            string          `gorm:"type:varchar(20);not null"`
	Monto           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NumeroDocumento string          `gorm:"type:varchar(40);not null"`
	Fecha           time.Time       `gorm:"not null;index"`
	// ComprobanteRef points to an externally stored receipt (content hash);
	// the ledger never holds the bytes.
	ComprobanteRef *string
	Descripcion    string `gorm:"not null"`
	// CierreID is set only on the AJUSTE entry generated at reconciliation,
	// linking it to the cierre that produced it.
	CierreID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
}
