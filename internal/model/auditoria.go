package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistroAuditoria is an immutable audit record of an administrative
// operation over cajas (barrido diario, consolidación masiva).
type RegistroAuditoria struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Accion     string     `gorm:"type:varchar(40);not null"`
	CajaID     *uuid.UUID `gorm:"type:uuid;index"`
	AperturaID *uuid.UUID `gorm:"type:uuid"`
	CierreID   *uuid.UUID `gorm:"type:uuid"`
	// Payload holds operation details (montos, metadata) serialized as JSON.
	Payload   string `gorm:"type:jsonb"`
	CreatedAt time.Time
}
