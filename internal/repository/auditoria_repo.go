package repository

import (
	"context"

	"cajaflow/internal/model"

	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	CreateTx(tx *gorm.DB, reg *model.RegistroAuditoria) error
	List(ctx context.Context, page, limit int) ([]model.RegistroAuditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) CreateTx(tx *gorm.DB, reg *model.RegistroAuditoria) error {
	return tx.Create(reg).Error
}

func (r *auditoriaRepo) List(ctx context.Context, page, limit int) ([]model.RegistroAuditoria, int64, error) {
	var regs []model.RegistroAuditoria
	var total int64
	q := r.db.WithContext(ctx).Model(&model.RegistroAuditoria{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&regs).Error
	return regs, total, err
}
