package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de aprobación de un cierre.
// PENDIENTE → CONSOLIDADA (terminal) | RECHAZADA → (corrección) → PENDIENTE
const (
	CierrePendiente   = "PENDIENTE"
	CierreConsolidada = "CONSOLIDADA"
	CierreRechazada   = "RECHAZADA"
)

// CierreCaja is the reconciliation record produced when an apertura ends.
// MontoEsperado is fixed at first closure: monto_inicial + SUM(movimientos)
// in [opened_at, fecha_cierre). It is never recomputed — corrections after a
// rejection only replace monto_contado and re-derive Diferencia against the
// original expected amount.
type CierreCaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AperturaID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CajaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	NumeroDocumento string          `gorm:"type:varchar(40);not null"`
	FechaCierre     time.Time       `gorm:"not null"`
	MontoEsperado   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoContado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones   *string
	Estado          string     `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	AprobadorID     *uuid.UUID `gorm:"type:uuid"`
	FechaAprobacion *time.Time
	MotivoRechazo   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Revisiones []RevisionCierre `gorm:"foreignKey:CierreID"`
}

// RevisionCierre preserves the rejected values of a cierre before a
// correction overwrites them. Append-only audit trail.
type RevisionCierre struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CierreID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoContado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones *string
	MotivoRechazo *string
	RechazadoPor  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
}
