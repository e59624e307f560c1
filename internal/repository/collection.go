package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist in its collection.
var ErrNotFound = errors.New("record not found")

// Query selects records from a collection.
//
// Where holds equality predicates keyed by field name. Sort names a field,
// prefixed with "-" for descending order. A Limit of zero means no limit.
type Query struct {
	Where map[string]interface{}
	Sort  string
	Limit int
}

// SortField splits Sort into the field name and direction.
func (q Query) SortField() (field string, desc bool) {
	if strings.HasPrefix(q.Sort, "-") {
		return strings.TrimPrefix(q.Sort, "-"), true
	}
	return q.Sort, false
}

// Collection is CRUD access to one named collection of records.
// Implementations exist for the hosted platform and for a gorm database.
type Collection[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Filter(ctx context.Context, q Query) ([]*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnsureID assigns an ID to records that embed domain.BaseModel.
func EnsureID(record interface{}) {
	if r, ok := record.(interface{ EnsureID() }); ok {
		r.EnsureID()
	}
}
