package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"access-system/domain/entities"
	"access-system/errors"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepositoryImpl(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) first(ctx context.Context, dst interface{}, query string, args ...interface{}) error {
	err := r.db.WithContext(ctx).Where(query, args...).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", errors.ErrCatalogNotFound, args)
	}
	return err
}

func (r *CatalogRepository) FindBot(ctx context.Context, id string) (*entities.Bot, error) {
	var m botModel
	if err := r.first(ctx, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.toEntity()
}

func (r *CatalogRepository) FindContact(ctx context.Context, id string) (*entities.Contact, error) {
	var m contactModel
	if err := r.first(ctx, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.toEntity()
}

func (r *CatalogRepository) FindPlan(ctx context.Context, id string) (*entities.Plan, error) {
	var m planModel
	if err := r.first(ctx, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

func (r *CatalogRepository) FindCycle(ctx context.Context, id string) (*entities.Cycle, error) {
	var m cycleModel
	if err := r.first(ctx, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

func (r *CatalogRepository) FindGroup(ctx context.Context, id string) (*entities.Group, error) {
	var m groupModel
	if err := r.first(ctx, &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.toEntity()
}

func (r *CatalogRepository) FindActiveGroupByBot(ctx context.Context, botID string) (*entities.Group, error) {
	var m groupModel
	if err := r.first(ctx, &m, "bot_id = ? AND active = ?", botID, true); err != nil {
		return nil, err
	}
	return m.toEntity()
}

func (r *CatalogRepository) FindAnyGroupByBot(ctx context.Context, botID string) (*entities.Group, error) {
	var m groupModel
	if err := r.first(ctx, &m, "bot_id = ?", botID); err != nil {
		return nil, err
	}
	return m.toEntity()
}
