package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrNameTaken = errors.New("name_taken")
	ErrInvalidID = errors.New("invalid_id")
)

// Service enforces the business invariants on top of the repository: unique
// names, existence checks and conflict detection. Field-level validation
// happens at the transport boundary before requests reach this interface.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name     string
	Category string
	Level    int
	HP       int
	Attack   int
	Defense  int
}

// UpdateRequest applies only its non-nil fields.
type UpdateRequest struct {
	ID       string
	Name     *string
	Category *string
	Level    *int
	HP       *int
	Attack   *int
	Defense  *int
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Level     int       `json:"level"`
	HP        int       `json:"hp"`
	Attack    int       `json:"attack"`
	Defense   int       `json:"defense"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseID converts an external identifier into a snowflake ID.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}
