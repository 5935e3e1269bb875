package service

import "errors"

// Business-rule violations surfaced to the caller verbatim. Handlers map
// them to HTTP status codes; none of them is retried automatically.
var (
	ErrCajaNoEncontrada   = errors.New("caja no encontrada")
	ErrCajaInactiva       = errors.New("la caja no está activa")
	ErrSesionYaAbierta    = errors.New("ya existe una sesión de caja abierta para este usuario")
	ErrNoSesionAbierta    = errors.New("no hay sesión de caja abierta")
	ErrCierreNoEncontrado = errors.New("cierre de caja no encontrado")
	ErrNoEsPropietario    = errors.New("solo el propietario de la sesión puede corregir el cierre")
	ErrEstadoInvalido     = errors.New("transición de estado no permitida")
	ErrNoAutorizado       = errors.New("permisos insuficientes para esta operación")
	ErrFechaInvalida      = errors.New("la fecha de cierre no puede ser anterior a la apertura")
	// ErrConflicto marks a concurrency conflict detected by the storage
	// layer (unique constraint / guarded update), distinct from generic
	// failures so callers can retry deliberately.
	ErrConflicto = errors.New("operación en conflicto con otra en curso")
)
