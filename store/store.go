// Package store is the persistence client for orders and technicians.
//
// It exposes the list/filter/get/create/update/delete verbs over gorm with
// whitelisted field names, so callers address records by their API field
// names (created_date, order_number, ...) and never by raw SQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidSort   = errors.New("invalid sort field")
	ErrInvalidFilter = errors.New("invalid filter field")
	ErrDuplicate     = errors.New("duplicate record")
)

// Fields maps API field names to values
type Fields map[string]any

// Store is the persistence contract for one record kind
type Store[T any] interface {
	List(ctx context.Context, sort string) ([]T, error)
	Filter(ctx context.Context, fields Fields, sort string) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, id string, fields Fields) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Schema describes which API fields of a record kind may be filtered,
// updated and sorted on, and the column each maps to.
type Schema struct {
	Columns     map[string]string
	Sortable    []string
	DefaultSort string
}

// GormStore implements Store on a gorm connection
type GormStore[T any] struct {
	db     *gorm.DB
	schema Schema
}

// New creates a store for records of type T
func New[T any](db *gorm.DB, schema Schema) *GormStore[T] {
	return &GormStore[T]{db: db, schema: schema}
}

// List returns every record ordered by sort ("field" or "-field")
func (s *GormStore[T]) List(ctx context.Context, sort string) ([]T, error) {
	return s.Filter(ctx, nil, sort)
}

// Filter returns the records whose fields equal the given values
func (s *GormStore[T]) Filter(ctx context.Context, fields Fields, sort string) ([]T, error) {
	order, err := s.orderBy(sort)
	if err != nil {
		return nil, err
	}
	conditions, err := s.columns(fields)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Order(order)
	if len(conditions) > 0 {
		query = query.Where(conditions)
	}

	records := make([]T, 0)
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

// Get fetches a record by id
func (s *GormStore[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.get(s.db.WithContext(ctx), id)
}

// Create inserts record; the id is assigned by the model's BeforeCreate hook
func (s *GormStore[T]) Create(ctx context.Context, record *T) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Update applies fields to the record with the given id and returns the
// updated record.
func (s *GormStore[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	values, err := s.columns(fields)
	if err != nil {
		return nil, err
	}

	var updated *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if len(values) > 0 {
			if err := tx.Model(record).Updates(values).Error; err != nil {
				if isDuplicate(err) {
					return fmt.Errorf("%w: %v", ErrDuplicate, err)
				}
				return fmt.Errorf("failed to update record: %w", err)
			}
		}
		updated, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes the record with the given id
func (s *GormStore[T]) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore[T]) get(tx *gorm.DB, id string) (*T, error) {
	record := new(T)
	if err := tx.Where("id = ?", id).First(record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return record, nil
}

// columns translates API field names to column names
func (s *GormStore[T]) columns(fields Fields) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for field, value := range fields {
		column, ok := s.schema.Columns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, field)
		}
		out[column] = value
	}
	return out, nil
}

// orderBy parses a sort such as "-created_date"
func (s *GormStore[T]) orderBy(sort string) (clause.OrderByColumn, error) {
	if sort == "" {
		sort = s.schema.DefaultSort
	}
	field := strings.TrimPrefix(sort, "-")
	desc := field != sort

	sortable := false
	for _, allowed := range s.schema.Sortable {
		if allowed == field {
			sortable = true
			break
		}
	}
	column, ok := s.schema.Columns[field]
	if !sortable || !ok {
		return clause.OrderByColumn{}, fmt.Errorf("%w: %s", ErrInvalidSort, sort)
	}

	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
