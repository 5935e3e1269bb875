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

// CajaService administers the register catalogue. Deactivating a caja only
// blocks new aperturas; sessions already open on it keep working until closed.
type CajaService interface {
	Crear(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error)
	Listar(ctx context.Context) ([]dto.CajaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error)
	SetActiva(ctx context.Context, id uuid.UUID, activa bool) (*dto.CajaResponse, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

func (s *cajaService) Crear(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error) {
	caja := &model.Caja{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activa:      true,
	}
	if err := s.repo.Create(ctx, caja); err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) Listar(ctx context.Context) ([]dto.CajaResponse, error) {
	cajas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		out = append(out, *cajaToResponse(&cajas[i]))
	}
	return out, nil
}

func (s *cajaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCajaNoEncontrada
		}
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *cajaService) SetActiva(ctx context.Context, id uuid.UUID, activa bool) (*dto.CajaResponse, error) {
	if _, err := s.Obtener(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActiva(ctx, id, activa); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, id)
}

func cajaToResponse(c *model.Caja) *dto.CajaResponse {
	return &dto.CajaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activa:      c.Activa,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}
