package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CreateFields are the caller-validated attributes persisted on create.
// Identifier and timestamps are assigned by the repository.
type CreateFields struct {
	Name     string
	Category string
	Level    int
	HP       int
	Attack   int
	Defense  int
}

// Changes is the partial field set applied on update. Nil fields stay
// untouched.
type Changes struct {
	Name     *string
	Category *string
	Level    *int
	HP       *int
	Attack   *int
	Defense  *int
}

// Repository owns persistence mechanics for pokemon records. Lookups and
// mutations report a missing row as (nil, nil); a non-nil error always means
// the store itself failed, never "not found".
type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Pokemon, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Pokemon, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Pokemon, error)
	Create(ctx context.Context, db *gorm.DB, fields CreateFields) (*Pokemon, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, changes Changes) (*Pokemon, error)
	Remove(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Pokemon, error)
}
