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

type AperturaService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.AperturaResponse, error)
	// Activa returns the actor's current open session, or ErrNoSesionAbierta.
	Activa(ctx context.Context, actor Actor) (*dto.AperturaResponse, error)
	Reporte(ctx context.Context, aperturaID uuid.UUID) (*dto.AperturaResponse, error)
	Historial(ctx context.Context, page, limit int) (*dto.AperturaListResponse, error)
}

type aperturaService struct {
	repo        repository.AperturaRepository
	cajas       repository.CajaRepository
	movimientos repository.MovimientoRepository
	authz       Autorizador
}

func NewAperturaService(
	repo repository.AperturaRepository,
	cajas repository.CajaRepository,
	movimientos repository.MovimientoRepository,
	authz Autorizador,
) AperturaService {
	return &aperturaService{repo: repo, cajas: cajas, movimientos: movimientos, authz: authz}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The "one open session per usuario" invariant is backed by the partial
// unique index; the pre-check only exists for a friendlier error before
// the constraint fires.

func (s *aperturaService) Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.AperturaResponse, error) {
	usuarioID := actor.ID
	if req.UsuarioID != nil {
		id, err := uuid.Parse(*req.UsuarioID)
		if err != nil {
			return nil, errors.New("usuario_id inválido")
		}
		if !s.authz.PuedeActuarPor(actor, id) {
			return nil, ErrNoAutorizado
		}
		usuarioID = id
	}

	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, errors.New("caja_id inválido")
	}
	caja, err := s.cajas.FindByID(ctx, cajaID)
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}
	if !caja.Activa {
		return nil, ErrCajaInactiva
	}

	if _, err := s.repo.FindAbiertaPorUsuario(ctx, usuarioID); err == nil {
		return nil, ErrSesionYaAbierta
	}

	openedAt := time.Now()
	apertura := &model.Apertura{
		CajaID:        cajaID,
		UsuarioID:     usuarioID,
		MontoInicial:  req.MontoInicial,
		Observaciones: req.Observaciones,
		Estado:        model.AperturaAbierta,
		OpenedAt:      openedAt,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, apertura); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return ErrSesionYaAbierta
			}
			return err
		}
		if req.MontoInicial.IsPositive() {
			seed := &model.MovimientoCaja{
				CajaID:          cajaID,
				UsuarioID:       usuarioID,
				AperturaID:      apertura.ID,
				Tipo:            model.MovimientoApertura,
				Monto:           req.MontoInicial,
				NumeroDocumento: numeroDocumento("AP", openedAt, usuarioID),
				Fecha:           openedAt,
				Descripcion:     "Fondo inicial de apertura",
			}
			if err := s.movimientos.CreateTx(tx, seed); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.buildReporte(ctx, apertura)
}

// ── Activa / Reporte / Historial ─────────────────────────────────────────────

func (s *aperturaService) Activa(ctx context.Context, actor Actor) (*dto.AperturaResponse, error) {
	apertura, err := s.repo.FindAbiertaPorUsuario(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSesionAbierta
		}
		return nil, err
	}
	return s.buildReporte(ctx, apertura)
}

func (s *aperturaService) Reporte(ctx context.Context, aperturaID uuid.UUID) (*dto.AperturaResponse, error) {
	apertura, err := s.repo.FindByID(ctx, aperturaID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	return s.buildReporte(ctx, apertura)
}

func (s *aperturaService) Historial(ctx context.Context, page, limit int) (*dto.AperturaListResponse, error) {
	aperturas, total, err := s.repo.ListCerradas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.AperturaListResponse{Total: total, Page: page, Limit: limit}
	for i := range aperturas {
		r, err := s.buildReporte(ctx, &aperturas[i])
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, *r)
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *aperturaService) buildReporte(ctx context.Context, apertura *model.Apertura) (*dto.AperturaResponse, error) {
	hasta := time.Now()
	if apertura.Cierre != nil {
		// Closed sessions report the fixed reconciliation window.
		hasta = apertura.Cierre.FechaCierre
	}
	sum, err := s.movimientos.SumarOperativos(ctx, apertura.CajaID, apertura.UsuarioID, apertura.OpenedAt, hasta)
	if err != nil {
		return nil, err
	}

	resp := &dto.AperturaResponse{
		ID:            apertura.ID.String(),
		CajaID:        apertura.CajaID.String(),
		UsuarioID:     apertura.UsuarioID.String(),
		MontoInicial:  apertura.MontoInicial,
		MontoEsperado: apertura.MontoInicial.Add(sum),
		Estado:        apertura.Estado,
		Observaciones: apertura.Observaciones,
		OpenedAt:      apertura.OpenedAt.Format(time.RFC3339),
	}
	if apertura.ClosedAt != nil {
		t := apertura.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	if apertura.Cierre != nil {
		c := cierreToResponse(apertura.Cierre)
		resp.Cierre = &c
		resp.MontoEsperado = apertura.Cierre.MontoEsperado
	}
	return resp, nil
}
