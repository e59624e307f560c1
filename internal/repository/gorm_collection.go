package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormCollection is the gorm implementation of Collection
type gormCollection[T any] struct {
	db *gorm.DB
}

// NewGormCollection creates a Collection backed by the table of T
func NewGormCollection[T any](db *gorm.DB) Collection[T] {
	return &gormCollection[T]{db: db}
}

func (r *gormCollection[T]) Create(ctx context.Context, record *T) error {
	EnsureID(record)
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return err
	}
	return nil
}

func (r *gormCollection[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCollection[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormCollection[T]) Filter(ctx context.Context, q Query) ([]*T, error) {
	tx := r.db.WithContext(ctx).Model(new(T))
	if len(q.Where) > 0 {
		tx = tx.Where(map[string]interface{}(q.Where))
	}
	if field, desc := q.SortField(); field != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var records []*T
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormCollection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
