package model

import (
	"time"

	"github.com/google/uuid"
)

// Caja is a physical or logical cash register that sessions are opened against.
// Inactive cajas reject new aperturas and are skipped by the daily sweep.
type Caja struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"not null"`
	Descripcion *string
	Activa      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
