package service

import (
	"context"
	"errors"
	"time"

	"cajaflow/internal/dto"
	"cajaflow/internal/model"
	"cajaflow/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NotificadorCierres is the best-effort channel that announces a new
// PENDIENTE cierre to reviewers. Delivery failures are logged and
// swallowed — they never roll back the cierre.
type NotificadorCierres interface {
	NotificarCierrePendiente(ctx context.Context, cierre *model.CierreCaja) error
}

type CierreService interface {
	Cerrar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	// CerrarSesionTx runs the reconciliation inside an existing transaction.
	// contado == nil forces monto_contado = monto_esperado (no-variance
	// close, used by the daily sweep).
	CerrarSesionTx(ctx context.Context, tx *gorm.DB, apertura *model.Apertura, contado *decimal.Decimal, observaciones *string, fechaCierre time.Time) (*model.CierreCaja, error)
	Obtener(ctx context.Context, cierreID uuid.UUID) (*dto.CierreResponse, error)
	Revisiones(ctx context.Context, cierreID uuid.UUID) ([]dto.RevisionCierreResponse, error)
}

type cierreService struct {
	repo        repository.CierreRepository
	aperturas   repository.AperturaRepository
	movimientos repository.MovimientoRepository
	authz       Autorizador
	notificador NotificadorCierres
}

func NewCierreService(
	repo repository.CierreRepository,
	aperturas repository.AperturaRepository,
	movimientos repository.MovimientoRepository,
	authz Autorizador,
	notificador NotificadorCierres,
) CierreService {
	return &cierreService{
		repo:        repo,
		aperturas:   aperturas,
		movimientos: movimientos,
		authz:       authz,
		notificador: notificador,
	}
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Resolves the owner's most recent open session — not necessarily opened
// today — and reconciles it:
//
//	esperado   = monto_inicial + SUM(movimientos en [opened_at, fecha_cierre))
//	diferencia = contado − esperado
//
// A non-zero diferencia appends an AJUSTE entry so the ledger reflects the
// counted reality after closure.

func (s *cierreService) Cerrar(ctx context.Context, actor Actor, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
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

	apertura, err := s.aperturas.FindAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSesionAbierta
		}
		return nil, err
	}

	fechaCierre := time.Now()
	if req.FechaCierre != nil {
		fechaCierre, err = time.Parse(time.RFC3339, *req.FechaCierre)
		if err != nil {
			return nil, errors.New("fecha_cierre inválida")
		}
	}
	if fechaCierre.Before(apertura.OpenedAt) {
		return nil, ErrFechaInvalida
	}

	contado := req.MontoContado
	var cierre *model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cierre, err = s.CerrarSesionTx(ctx, tx, apertura, &contado, req.Observaciones, fechaCierre)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notificarPendiente(ctx, cierre)

	resp := cierreToResponse(cierre)
	return &resp, nil
}

func (s *cierreService) CerrarSesionTx(ctx context.Context, tx *gorm.DB, apertura *model.Apertura, contado *decimal.Decimal, observaciones *string, fechaCierre time.Time) (*model.CierreCaja, error) {
	// Guarded update first: it serializes concurrent closes of the same
	// session — the loser sees zero rows and fails with ErrNoSesionAbierta.
	cerrada, err := s.aperturas.MarcarCerradaTx(tx, apertura.ID, fechaCierre)
	if err != nil {
		return nil, err
	}
	if !cerrada {
		return nil, ErrNoSesionAbierta
	}

	sum, err := s.movimientos.SumarOperativosTx(tx, apertura.CajaID, apertura.UsuarioID, apertura.OpenedAt, fechaCierre)
	if err != nil {
		return nil, err
	}
	esperado := apertura.MontoInicial.Add(sum)

	montoContado := esperado
	if contado != nil {
		montoContado = *contado
	}
	diferencia := montoContado.Sub(esperado)

	cierre := &model.CierreCaja{
		AperturaID:      apertura.ID,
		CajaID:          apertura.CajaID,
		UsuarioID:       apertura.UsuarioID,
		NumeroDocumento: numeroDocumento("CI", fechaCierre, apertura.UsuarioID),
		FechaCierre:     fechaCierre,
		MontoEsperado:   esperado,
		MontoContado:    montoContado,
		Diferencia:      diferencia,
		Observaciones:   observaciones,
		Estado:          model.CierrePendiente,
	}
	if err := s.repo.CreateTx(tx, cierre); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrConflicto
		}
		return nil, err
	}

	if !diferencia.IsZero() {
		ajuste := &model.MovimientoCaja{
			CajaID:          apertura.CajaID,
			UsuarioID:       apertura.UsuarioID,
			AperturaID:      apertura.ID,
			Tipo:            model.MovimientoAjuste,
			Monto:           diferencia,
			NumeroDocumento: numeroDocumento("AJ", fechaCierre, apertura.UsuarioID),
			Fecha:           fechaCierre,
			Descripcion:     "Ajuste por diferencia de arqueo",
			CierreID:        &cierre.ID,
		}
		if err := s.movimientos.CreateTx(tx, ajuste); err != nil {
			return nil, err
		}
	}

	return cierre, nil
}

func (s *cierreService) Obtener(ctx context.Context, cierreID uuid.UUID) (*dto.CierreResponse, error) {
	cierre, err := s.repo.FindByID(ctx, cierreID)
	if err != nil {
		return nil, ErrCierreNoEncontrado
	}
	resp := cierreToResponse(cierre)
	return &resp, nil
}

func (s *cierreService) Revisiones(ctx context.Context, cierreID uuid.UUID) ([]dto.RevisionCierreResponse, error) {
	revs, err := s.repo.ListRevisiones(ctx, cierreID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RevisionCierreResponse, len(revs))
	for i, r := range revs {
		resp[i] = dto.RevisionCierreResponse{
			ID:            r.ID.String(),
			MontoContado:  r.MontoContado,
			Diferencia:    r.Diferencia,
			Observaciones: r.Observaciones,
			MotivoRechazo: r.MotivoRechazo,
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cierreService) notificarPendiente(ctx context.Context, cierre *model.CierreCaja) {
	if s.notificador == nil {
		return
	}
	if err := s.notificador.NotificarCierrePendiente(ctx, cierre); err != nil {
		logNotificacionFallida(cierre, err)
	}
}

func logNotificacionFallida(cierre *model.CierreCaja, err error) {
	log.Warn().
		Str("cierre_id", cierre.ID.String()).
		Err(err).
		Msg("no se pudo notificar el cierre pendiente")
}

func cierreToResponse(c *model.CierreCaja) dto.CierreResponse {
	resp := dto.CierreResponse{
		ID:              c.ID.String(),
		AperturaID:      c.AperturaID.String(),
		CajaID:          c.CajaID.String(),
		UsuarioID:       c.UsuarioID.String(),
		NumeroDocumento: c.NumeroDocumento,
		FechaCierre:     c.FechaCierre.Format(time.RFC3339),
		MontoEsperado:   c.MontoEsperado,
		MontoContado:    c.MontoContado,
		Diferencia:      c.Diferencia,
		Observaciones:   c.Observaciones,
		Estado:          c.Estado,
		MotivoRechazo:   c.MotivoRechazo,
	}
	if c.AprobadorID != nil {
		id := c.AprobadorID.String()
		resp.AprobadorID = &id
	}
	if c.FechaAprobacion != nil {
		t := c.FechaAprobacion.Format(time.RFC3339)
		resp.FechaAprobacion = &t
	}
	return resp
}
