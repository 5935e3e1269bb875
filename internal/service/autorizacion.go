package service

import "github.com/google/uuid"

// Actor is the authenticated identity every operation receives explicitly.
// No service reads ambient "current user" state.
type Actor struct {
	ID       uuid.UUID
	Username string
	Rol      string
}

// Autorizador answers capability questions decoupled from concrete role
// names. Handlers inject the role-based implementation; tests may inject
// their own.
type Autorizador interface {
	// PuedeActuarPor reports whether actor may open/close sessions owned
	// by usuarioID.
	PuedeActuarPor(actor Actor, usuarioID uuid.UUID) bool
	PuedeAprobarCierres(actor Actor) bool
	PuedeEjecutarBarrido(actor Actor) bool
}

type autorizadorPorRol struct{}

// NewAutorizadorPorRol maps the capability interface onto the
// cajero/supervisor/administrador role set.
func NewAutorizadorPorRol() Autorizador { return &autorizadorPorRol{} }

func (autorizadorPorRol) PuedeActuarPor(actor Actor, usuarioID uuid.UUID) bool {
	return actor.ID == usuarioID || actor.Rol == "supervisor" || actor.Rol == "administrador"
}

func (autorizadorPorRol) PuedeAprobarCierres(actor Actor) bool {
	return actor.Rol == "supervisor" || actor.Rol == "administrador"
}

func (autorizadorPorRol) PuedeEjecutarBarrido(actor Actor) bool {
	return actor.Rol == "administrador"
}
