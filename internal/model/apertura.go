package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una apertura.
const (
	AperturaAbierta = "abierta"
	AperturaCerrada = "cerrada"
)

// Apertura represents one open-to-close lifecycle of a caja for one operator.
// Estado: "abierta" | "cerrada"
// Immutable once created — the only state change is the close transition,
// which attaches a CierreCaja and flips Estado. Never deleted.
//
// The single-open-session invariant (at most one apertura "abierta" per
// usuario) is enforced by a partial unique index on (usuario_id) WHERE
// estado = 'abierta'; see infra.applySchemaPatches.
type Apertura struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones *string
	Estado        string `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt      time.Time
	ClosedAt      *time.Time
	CreatedAt     time.Time

	Cierre      *CierreCaja      `gorm:"foreignKey:AperturaID"`
	Movimientos []MovimientoCaja `gorm:"foreignKey:AperturaID"`
}
