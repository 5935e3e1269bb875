package service

import (
	"context"
	"encoding/json"
	"time"

	"cajaflow/internal/dto"
	"cajaflow/internal/model"
	"cajaflow/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BarridoService is the daily global closure: it force-closes every open
// session of every active caja with contado = esperado (no-variance close),
// auto-consolidates the resulting cierres, and leaves an audit record per
// session.
type BarridoService interface {
	Ejecutar(ctx context.Context, actor Actor) (*dto.BarridoResponse, error)
}

type barridoService struct {
	cajas      repository.CajaRepository
	aperturas  repository.AperturaRepository
	auditoria  repository.AuditoriaRepository
	cierres    CierreService
	aprobacion AprobacionService
	authz      Autorizador
}

func NewBarridoService(
	cajas repository.CajaRepository,
	aperturas repository.AperturaRepository,
	auditoria repository.AuditoriaRepository,
	cierres CierreService,
	aprobacion AprobacionService,
	authz Autorizador,
) BarridoService {
	return &barridoService{
		cajas:      cajas,
		aperturas:  aperturas,
		auditoria:  auditoria,
		cierres:    cierres,
		aprobacion: aprobacion,
		authz:      authz,
	}
}

type auditoriaBarrido struct {
	MontoEsperado string `json:"monto_esperado"`
	MontoContado  string `json:"monto_contado"`
	Diferencia    string `json:"diferencia"`
	FechaCierre   string `json:"fecha_cierre"`
}

// Ejecutar wraps all closures in one transaction; each caja runs inside a
// savepoint so one failing caja rolls back only its own work and lands in
// the error list instead of aborting the sweep.
func (s *barridoService) Ejecutar(ctx context.Context, actor Actor) (*dto.BarridoResponse, error) {
	if !s.authz.PuedeEjecutarBarrido(actor) {
		return nil, ErrNoAutorizado
	}

	cajas, err := s.cajas.ListActivas(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.BarridoResponse{DiferenciaTotal: decimal.Zero}
	fechaCierre := time.Now()

	txErr := runTx(ctx, s.aperturas.DB(), func(tx *gorm.DB) error {
		for _, caja := range cajas {
			var cerradas int
			var diferencia decimal.Decimal

			cajaErr := runSavepoint(tx, func(stx *gorm.DB) error {
				aperturas, err := s.aperturas.ListAbiertasPorCajaTx(stx, caja.ID)
				if err != nil {
					return err
				}
				if len(aperturas) == 0 {
					return nil
				}
				for i := range aperturas {
					cierre, err := s.cierres.CerrarSesionTx(ctx, stx, &aperturas[i], nil, nil, fechaCierre)
					if err != nil {
						return err
					}
					if err := s.aprobacion.AprobarTx(stx, cierre, actor.ID); err != nil {
						return err
					}
					if err := s.registrarAuditoria(stx, actor, &caja, cierre); err != nil {
						return err
					}
					cerradas++
					diferencia = diferencia.Add(cierre.Diferencia)
				}
				return nil
			})

			if cajaErr != nil {
				log.Error().
					Str("caja_id", caja.ID.String()).
					Err(cajaErr).
					Msg("barrido: caja omitida por error")
				resp.Errores = append(resp.Errores, dto.BarridoError{
					CajaID:  caja.ID.String(),
					Detalle: cajaErr.Error(),
				})
				continue
			}
			if cerradas == 0 {
				resp.CajasOmitidas++
				continue
			}
			resp.CajasProcesadas++
			resp.SesionesCerradas += cerradas
			resp.DiferenciaTotal = resp.DiferenciaTotal.Add(diferencia)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("cajas_procesadas", resp.CajasProcesadas).
		Int("sesiones_cerradas", resp.SesionesCerradas).
		Int("errores", len(resp.Errores)).
		Msg("barrido diario completado")
	return resp, nil
}

func (s *barridoService) registrarAuditoria(tx *gorm.DB, actor Actor, caja *model.Caja, cierre *model.CierreCaja) error {
	payload, err := json.Marshal(auditoriaBarrido{
		MontoEsperado: cierre.MontoEsperado.String(),
		MontoContado:  cierre.MontoContado.String(),
		Diferencia:    cierre.Diferencia.String(),
		FechaCierre:   cierre.FechaCierre.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.auditoria.CreateTx(tx, &model.RegistroAuditoria{
		ActorID:    actor.ID,
		Accion:     "barrido_diario",
		CajaID:     &caja.ID,
		AperturaID: &cierre.AperturaID,
		CierreID:   &cierre.ID,
		Payload:    string(payload),
	})
}
