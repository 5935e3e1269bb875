package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// numeroDocumento builds the document reference for generated ledger
// entries and cierres: prefix + business date + owner short id.
// Prefijos: AP apertura, CI cierre, AJ ajuste.
func numeroDocumento(prefijo string, fecha time.Time, usuarioID uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s", prefijo, fecha.Format("20060102"), usuarioID.String()[:8])
}
