package service

import (
	"context"

	obsmetrics "github.com/smallbiznis/pokedex/internal/observability/metrics"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    pokemondomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    pokemondomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) pokemondomain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("pokemon.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Create rejects a taken name before delegating. The store's unique index
// stays authoritative: a duplicate-key failure from a lost race maps to the
// same conflict.
func (s *service) Create(ctx context.Context, req pokemondomain.CreateRequest) (*pokemondomain.Response, error) {
	existing, err := s.repo.FindByName(ctx, s.db, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.RecordNameConflict(ctx, "create")
		return nil, pokemondomain.ErrNameTaken
	}

	created, err := s.repo.Create(ctx, s.db, pokemondomain.CreateFields{
		Name:     req.Name,
		Category: req.Category,
		Level:    req.Level,
		HP:       req.HP,
		Attack:   req.Attack,
		Defense:  req.Defense,
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.metrics.RecordNameConflict(ctx, "create")
			return nil, pokemondomain.ErrNameTaken
		}
		return nil, err
	}

	s.metrics.RecordCreated(ctx, created.Category)
	return toResponse(created), nil
}

func (s *service) List(ctx context.Context) ([]pokemondomain.Response, error) {
	rows, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	out := make([]pokemondomain.Response, 0, len(rows))
	for i := range rows {
		out = append(out, *toResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*pokemondomain.Response, error) {
	parsed, err := pokemondomain.ParseID(id)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pokemondomain.ErrNotFound
	}
	return toResponse(p), nil
}

// Update checks the name claim only when a rename is requested; renaming a
// record to its own name is allowed. Existence is learned from the write
// itself, not from a pre-read.
func (s *service) Update(ctx context.Context, req pokemondomain.UpdateRequest) (*pokemondomain.Response, error) {
	id, err := pokemondomain.ParseID(req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		holder, err := s.repo.FindByName(ctx, s.db, *req.Name)
		if err != nil {
			return nil, err
		}
		if holder != nil && holder.ID != id {
			s.metrics.RecordNameConflict(ctx, "update")
			return nil, pokemondomain.ErrNameTaken
		}
	}

	updated, err := s.repo.Update(ctx, s.db, id, pokemondomain.Changes{
		Name:     req.Name,
		Category: req.Category,
		Level:    req.Level,
		HP:       req.HP,
		Attack:   req.Attack,
		Defense:  req.Defense,
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.metrics.RecordNameConflict(ctx, "update")
			return nil, pokemondomain.ErrNameTaken
		}
		return nil, err
	}
	if updated == nil {
		return nil, pokemondomain.ErrNotFound
	}

	s.metrics.RecordUpdated(ctx)
	return toResponse(updated), nil
}

// Delete returns the removed record so callers can confirm what was dropped.
func (s *service) Delete(ctx context.Context, id string) (*pokemondomain.Response, error) {
	parsed, err := pokemondomain.ParseID(id)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Remove(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, pokemondomain.ErrNotFound
	}

	s.metrics.RecordDeleted(ctx)
	s.log.Debug("pokemon removed", zap.String("id", removed.ID.String()), zap.String("name", removed.Name))
	return toResponse(removed), nil
}

func toResponse(p *pokemondomain.Pokemon) *pokemondomain.Response {
	return &pokemondomain.Response{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Level:     p.Level,
		HP:        p.HP,
		Attack:    p.Attack,
		Defense:   p.Defense,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
