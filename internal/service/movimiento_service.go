package service

import (
	"context"
	"errors"
	"time"

	"cajaflow/internal/dto"
	"cajaflow/internal/model"
	"cajaflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoService interface {
	// Registrar appends a signed ledger entry against the actor's open
	// session. The sign is derived from the tipo, never taken verbatim.
	Registrar(ctx context.Context, actor Actor, req dto.MovimientoRequest) (*dto.MovimientoResponse, error)
	ListarPorApertura(ctx context.Context, aperturaID uuid.UUID) ([]dto.MovimientoResponse, error)
}

type movimientoService struct {
	repo      repository.MovimientoRepository
	aperturas repository.AperturaRepository
}

func NewMovimientoService(repo repository.MovimientoRepository, aperturas repository.AperturaRepository) MovimientoService {
	return &movimientoService{repo: repo, aperturas: aperturas}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Entries are immutable — corrections are new offsetting entries.

func (s *movimientoService) Registrar(ctx context.Context, actor Actor, req dto.MovimientoRequest) (*dto.MovimientoResponse, error) {
	apertura, err := s.aperturas.FindAbiertaPorUsuario(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSesionAbierta
		}
		return nil, err
	}

	// Egresos (GASTO, COMPRA) se almacenan negativos; el resto positivo.
	monto := req.Monto.Abs()
	if model.EsEgreso(req.Tipo) {
		monto = monto.Neg()
	}

	mov := &model.MovimientoCaja{
		CajaID:          apertura.CajaID,
		UsuarioID:       apertura.UsuarioID,
		AperturaID:      apertura.ID,
		Tipo:            req.Tipo,
		Monto:           monto,
		NumeroDocumento: req.NumeroDocumento,
		Fecha:           time.Now(),
		ComprobanteRef:  req.ComprobanteRef,
		Descripcion:     req.Descripcion,
	}
	if err := s.repo.Create(ctx, mov); err != nil {
		return nil, err
	}
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *movimientoService) ListarPorApertura(ctx context.Context, aperturaID uuid.UUID) ([]dto.MovimientoResponse, error) {
	movs, err := s.repo.ListPorApertura(ctx, aperturaID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		resp[i] = movimientoToResponse(&movs[i])
	}
	return resp, nil
}

func movimientoToResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:              m.ID.String(),
		Tipo:            m.Tipo,
		Monto:           m.Monto,
		NumeroDocumento: m.NumeroDocumento,
		Fecha:           m.Fecha.Format(time.RFC3339),
		Descripcion:     m.Descripcion,
		ComprobanteRef:  m.ComprobanteRef,
	}
	if m.CierreID != nil {
		id := m.CierreID.String()
		resp.CierreID = &id
	}
	return resp
}
