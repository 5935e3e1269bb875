package service

import (
	"context"
	"fmt"
	"time"

	"cajaflow/internal/dto"
	"cajaflow/internal/model"
	"cajaflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AprobacionService interface {
	// Aprobar: PENDIENTE → CONSOLIDADA (terminal).
	Aprobar(ctx context.Context, actor Actor, cierreID uuid.UUID) (*dto.CierreResponse, error)
	// Rechazar: PENDIENTE → RECHAZADA (admits correction).
	Rechazar(ctx context.Context, actor Actor, cierreID uuid.UUID, req dto.RechazarCierreRequest) (*dto.CierreResponse, error)
	// Corregir: RECHAZADA → PENDIENTE, owner only. Diferencia is re-derived
	// against the ORIGINAL monto_esperado; the reconciliation window is
	// fixed at first closure and never recomputed.
	Corregir(ctx context.Context, actor Actor, cierreID uuid.UUID, req dto.CorregirCierreRequest) (*dto.CierreResponse, error)
	ConsolidarLote(ctx context.Context, actor Actor, req dto.ConsolidarLoteRequest) (*dto.ConsolidarLoteResponse, error)
	// AprobarTx applies the approve transition inside an existing
	// transaction (used by ConsolidarLote and the daily sweep).
	AprobarTx(tx *gorm.DB, cierre *model.CierreCaja, aprobadorID uuid.UUID) error
	ListarPorEstado(ctx context.Context, estado string, page, limit int) (*dto.CierreListResponse, error)
}

type aprobacionService struct {
	repo        repository.CierreRepository
	movimientos repository.MovimientoRepository
	authz       Autorizador
	notificador NotificadorCierres
}

func NewAprobacionService(
	repo repository.CierreRepository,
	movimientos repository.MovimientoRepository,
	authz Autorizador,
	notificador NotificadorCierres,
) AprobacionService {
	return &aprobacionService{repo: repo, movimientos: movimientos, authz: authz, notificador: notificador}
}

// ── Aprobar ───────────────────────────────────────────────────────────────────

func (s *aprobacionService) Aprobar(ctx context.Context, actor Actor, cierreID uuid.UUID) (*dto.CierreResponse, error) {
	if !s.authz.PuedeAprobarCierres(actor) {
		return nil, ErrNoAutorizado
	}

	var cierre *model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cierre, err = s.repo.FindByIDTx(tx, cierreID)
		if err != nil {
			return ErrCierreNoEncontrado
		}
		return s.AprobarTx(tx, cierre, actor.ID)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := cierreToResponse(cierre)
	return &resp, nil
}

func (s *aprobacionService) AprobarTx(tx *gorm.DB, cierre *model.CierreCaja, aprobadorID uuid.UUID) error {
	if cierre.Estado != model.CierrePendiente {
		return ErrEstadoInvalido
	}
	ahora := time.Now()
	cierre.Estado = model.CierreConsolidada
	cierre.AprobadorID = &aprobadorID
	cierre.FechaAprobacion = &ahora
	return s.repo.UpdateTx(tx, cierre)
}

// ── Rechazar ──────────────────────────────────────────────────────────────────

func (s *aprobacionService) Rechazar(ctx context.Context, actor Actor, cierreID uuid.UUID, req dto.RechazarCierreRequest) (*dto.CierreResponse, error) {
	if !s.authz.PuedeAprobarCierres(actor) {
		return nil, ErrNoAutorizado
	}

	var cierre *model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cierre, err = s.repo.FindByIDTx(tx, cierreID)
		if err != nil {
			return ErrCierreNoEncontrado
		}
		if cierre.Estado != model.CierrePendiente {
			return ErrEstadoInvalido
		}
		ahora := time.Now()
		cierre.Estado = model.CierreRechazada
		cierre.AprobadorID = &actor.ID
		cierre.FechaAprobacion = &ahora
		cierre.MotivoRechazo = &req.Motivo
		return s.repo.UpdateTx(tx, cierre)
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := cierreToResponse(cierre)
	return &resp, nil
}

// ── Corregir ──────────────────────────────────────────────────────────────────
// The rejected values are preserved as a RevisionCierre row before being
// overwritten. The ledger is reconciled with a delta AJUSTE entry — the
// original adjustment is never mutated.

func (s *aprobacionService) Corregir(ctx context.Context, actor Actor, cierreID uuid.UUID, req dto.CorregirCierreRequest) (*dto.CierreResponse, error) {
	var cierre *model.CierreCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cierre, err = s.repo.FindByIDTx(tx, cierreID)
		if err != nil {
			return ErrCierreNoEncontrado
		}
		if cierre.UsuarioID != actor.ID {
			return ErrNoEsPropietario
		}
		if cierre.Estado != model.CierreRechazada {
			return ErrEstadoInvalido
		}

		rev := &model.RevisionCierre{
			CierreID:      cierre.ID,
			MontoContado:  cierre.MontoContado,
			Diferencia:    cierre.Diferencia,
			Observaciones: cierre.Observaciones,
			MotivoRechazo: cierre.MotivoRechazo,
			RechazadoPor:  cierre.AprobadorID,
		}
		if err := s.repo.CreateRevisionTx(tx, rev); err != nil {
			return err
		}

		nuevaDiferencia := req.MontoContado.Sub(cierre.MontoEsperado)
		delta := nuevaDiferencia.Sub(cierre.Diferencia)
		if !delta.IsZero() {
			ahora := time.Now()
			ajuste := &model.MovimientoCaja{
				CajaID:          cierre.CajaID,
				UsuarioID:       cierre.UsuarioID,
				AperturaID:      cierre.AperturaID,
				Tipo:            model.MovimientoAjuste,
				Monto:           delta,
				NumeroDocumento: numeroDocumento("AJ", ahora, cierre.UsuarioID),
				Fecha:           ahora,
				Descripcion:     "Ajuste por corrección de arqueo",
				CierreID:        &cierre.ID,
			}
			if err := s.movimientos.CreateTx(tx, ajuste); err != nil {
				return err
			}
		}

		cierre.MontoContado = req.MontoContado
		cierre.Diferencia = nuevaDiferencia
		cierre.Observaciones = req.Observaciones
		cierre.Estado = model.CierrePendiente
		cierre.AprobadorID = nil
		cierre.FechaAprobacion = nil
		cierre.MotivoRechazo = nil
		return s.repo.UpdateTx(tx, cierre)
	})
	if txErr != nil {
		return nil, txErr
	}

	// The corrected cierre re-enters the review queue.
	if s.notificador != nil {
		if err := s.notificador.NotificarCierrePendiente(ctx, cierre); err != nil {
			logNotificacionFallida(cierre, err)
		}
	}

	resp := cierreToResponse(cierre)
	return &resp, nil
}

// ── ConsolidarLote ────────────────────────────────────────────────────────────
// Approves a whole set in one transaction; any non-PENDIENTE cierre aborts
// the batch so totals always describe fully applied work.

func (s *aprobacionService) ConsolidarLote(ctx context.Context, actor Actor, req dto.ConsolidarLoteRequest) (*dto.ConsolidarLoteResponse, error) {
	if !s.authz.PuedeAprobarCierres(actor) {
		return nil, ErrNoAutorizado
	}

	resumen := &dto.ConsolidarLoteResponse{
		TotalEsperado:   decimal.Zero,
		TotalContado:    decimal.Zero,
		TotalDiferencia: decimal.Zero,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, idStr := range req.CierreIDs {
			id, err := uuid.Parse(idStr)
			if err != nil {
				return fmt.Errorf("cierre_id inválido: %s", idStr)
			}
			cierre, err := s.repo.FindByIDTx(tx, id)
			if err != nil {
				return fmt.Errorf("cierre %s: %w", idStr, ErrCierreNoEncontrado)
			}
			if err := s.AprobarTx(tx, cierre, actor.ID); err != nil {
				return fmt.Errorf("cierre %s: %w", idStr, err)
			}
			resumen.Cantidad++
			resumen.TotalEsperado = resumen.TotalEsperado.Add(cierre.MontoEsperado)
			resumen.TotalContado = resumen.TotalContado.Add(cierre.MontoContado)
			resumen.TotalDiferencia = resumen.TotalDiferencia.Add(cierre.Diferencia)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return resumen, nil
}

func (s *aprobacionService) ListarPorEstado(ctx context.Context, estado string, page, limit int) (*dto.CierreListResponse, error) {
	cierres, total, err := s.repo.ListPorEstado(ctx, estado, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.CierreListResponse{Total: total, Page: page, Limit: limit}
	for i := range cierres {
		resp.Data = append(resp.Data, cierreToResponse(&cierres[i]))
	}
	return resp, nil
}
