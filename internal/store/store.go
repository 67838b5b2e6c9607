// Package store is the gorm-backed persistence of the POS entities. Reads
// used by validation live in lookups.go; tenant scoping in scope.go.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pos-backend/internal/apperr"
	"pos-backend/internal/database"
	"pos-backend/internal/pagination"
	"pos-backend/internal/policy"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn against a Store bound to one database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Create inserts v without touching its associations.
func (s *Store) Create(ctx context.Context, v any) error {
	return write(s.conn(ctx).Omit(clause.Associations).Create(v).Error)
}

// Save writes every column of v without touching its associations.
func (s *Store) Save(ctx context.Context, v any) error {
	return write(s.conn(ctx).Omit(clause.Associations).Save(v).Error)
}

func (s *Store) Delete(ctx context.Context, v any) error {
	return write(s.conn(ctx).Delete(v).Error)
}

// write translates constraint violations and wraps everything else as an
// internal error.
func write(err error) error {
	if err == nil {
		return nil
	}
	if err = database.TranslateError(err); apperr.IsKind(err, apperr.KindValidation) {
		return err
	}
	return apperr.Internal(err)
}

func read(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal(err)
}

// missing is the error for a row the scope cannot see.
func missing(scope policy.Scope, entity policy.Entity) error {
	if scope.All {
		return apperr.NotFound(fmt.Sprintf("No %s matches the given query.", entity))
	}
	return policy.NotOwner()
}

// Get loads one row of entity by id within scope. preload names
// associations to load with it.
func Get[T any](ctx context.Context, s *Store, entity policy.Entity, scope policy.Scope, id uint, preload ...string) (*T, error) {
	q := s.Scoped(ctx, entity, scope)
	for _, p := range preload {
		q = q.Preload(p)
	}

	var v T
	err := q.Where(tableOf(entity)+".id = ?", id).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, missing(scope, entity)
	}
	if err != nil {
		return nil, read(err)
	}
	return &v, nil
}

// All lists every row of entity within scope, ordered by id.
func All[T any](ctx context.Context, s *Store, entity policy.Entity, scope policy.Scope, filter func(*gorm.DB) *gorm.DB, preload ...string) ([]T, error) {
	q := s.Scoped(ctx, entity, scope)
	if filter != nil {
		q = filter(q)
	}
	for _, p := range preload {
		q = q.Preload(p)
	}

	var out []T
	if err := q.Order(tableOf(entity) + ".id").Find(&out).Error; err != nil {
		return nil, read(err)
	}
	return out, nil
}

// List is All with pagination. Pages past the last one are rejected.
func List[T any](ctx context.Context, s *Store, entity policy.Entity, scope policy.Scope, p pagination.Params, order string, preload ...string) ([]T, int64, error) {
	var count int64
	if err := s.Scoped(ctx, entity, scope).Model(new(T)).Count(&count).Error; err != nil {
		return nil, 0, read(err)
	}
	if err := p.Check(count); err != nil {
		return nil, 0, err
	}

	q := s.Scoped(ctx, entity, scope)
	for _, pre := range preload {
		q = q.Preload(pre)
	}
	if order == "" {
		order = tableOf(entity) + ".id"
	}

	var out []T
	if err := q.Order(order).Offset(p.Offset()).Limit(p.PageSize).Find(&out).Error; err != nil {
		return nil, 0, read(err)
	}
	return out, count, nil
}
