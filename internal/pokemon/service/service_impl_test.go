package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/pokedex/internal/clock"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/internal/pokemon/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.Exec(`
CREATE TABLE IF NOT EXISTS pokemon (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	level INTEGER NOT NULL,
	hp INTEGER NOT NULL,
	attack INTEGER NOT NULL,
	defense INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := gdb.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_pokemon_name ON pokemon (name)`).Error; err != nil {
		t.Fatalf("create index: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func newTestService(t *testing.T, fake *clock.FakeClock) pokemondomain.Service {
	t.Helper()
	gdb := newTestDB(t)
	return New(Params{
		DB:   gdb,
		Log:  zap.NewNop(),
		Repo: repository.Provide(mustNode(t), fake),
	})
}

func pikachuRequest() pokemondomain.CreateRequest {
	return pokemondomain.CreateRequest{
		Name:     "Pikachu",
		Category: "Electric",
		Level:    25,
		HP:       35,
		Attack:   55,
		Defense:  40,
	}
}

func TestCreateReturnsPersistedRecord(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	resp, err := svc.Create(ctx, pikachuRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if resp.Name != "Pikachu" || resp.Category != "Electric" || resp.Level != 25 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.CreatedAt.Equal(resp.UpdatedAt) {
		t.Fatalf("expected equal timestamps at creation: %v vs %v", resp.CreatedAt, resp.UpdatedAt)
	}
}

func TestCreateDuplicateNameReturnsConflict(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	first, err := svc.Create(ctx, pikachuRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := pikachuRequest()
	dup.Level = 99
	if _, err := svc.Create(ctx, dup); !errors.Is(err, pokemondomain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	// The existing record must be untouched by the rejected create.
	stored, err := svc.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if stored.Level != 25 {
		t.Fatalf("existing record mutated: %+v", stored)
	}
}

func TestGetByIDMissingReturnsNotFound(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)

	if _, err := svc.GetByID(context.Background(), "424242"); !errors.Is(err, pokemondomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)

	if _, err := svc.GetByID(context.Background(), "not-a-number"); !errors.Is(err, pokemondomain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestUpdatePartialPreservesUnsuppliedFields(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	created, err := svc.Create(ctx, pikachuRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Advance(time.Minute)
	level := 30
	updated, err := svc.Update(ctx, pokemondomain.UpdateRequest{ID: created.ID, Level: &level})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Level != 30 {
		t.Fatalf("expected level 30, got %d", updated.Level)
	}
	if updated.Name != created.Name || updated.Category != created.Category {
		t.Fatalf("unsupplied fields changed: %+v", updated)
	}
	if updated.HP != created.HP || updated.Attack != created.Attack || updated.Defense != created.Defense {
		t.Fatalf("unsupplied scores changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must strictly advance: %v vs %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateSelfRenameSucceeds(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	created, err := svc.Create(ctx, pikachuRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Pikachu"
	level := 26
	updated, err := svc.Update(ctx, pokemondomain.UpdateRequest{ID: created.ID, Name: &name, Level: &level})
	if err != nil {
		t.Fatalf("self-rename update: %v", err)
	}
	if updated.Name != "Pikachu" || updated.Level != 26 {
		t.Fatalf("unexpected record after self-rename: %+v", updated)
	}
}

func TestUpdateRenameToTakenNameConflicts(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.Create(ctx, pikachuRequest()); err != nil {
		t.Fatalf("create pikachu: %v", err)
	}

	other := pikachuRequest()
	other.Name = "Raichu"
	created, err := svc.Create(ctx, other)
	if err != nil {
		t.Fatalf("create raichu: %v", err)
	}

	name := "Pikachu"
	if _, err := svc.Update(ctx, pokemondomain.UpdateRequest{ID: created.ID, Name: &name}); !errors.Is(err, pokemondomain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)

	level := 42
	if _, err := svc.Update(context.Background(), pokemondomain.UpdateRequest{ID: "987654", Level: &level}); !errors.Is(err, pokemondomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReturnsRemovedThenNotFound(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	created, err := svc.Create(ctx, pikachuRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.Name != "Pikachu" {
		t.Fatalf("expected removed record, got %+v", removed)
	}

	if _, err := svc.Delete(ctx, created.ID); !errors.Is(err, pokemondomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, pokemondomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	for _, name := range []string{"Bulbasaur", "Charmander", "Squirtle"} {
		req := pikachuRequest()
		req.Name = name
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		fake.Advance(time.Second)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"Squirtle", "Charmander", "Bulbasaur"} {
		if rows[i].Name != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, rows[i].Name)
		}
	}
}

// stubRepo injects store-level failures the real sqlite repo cannot produce
// deterministically.
type stubRepo struct {
	createErr error
	updateErr error
}

func (s *stubRepo) List(ctx context.Context, db *gorm.DB) ([]pokemondomain.Pokemon, error) {
	return nil, nil
}

func (s *stubRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pokemondomain.Pokemon, error) {
	return nil, nil
}

func (s *stubRepo) FindByName(ctx context.Context, db *gorm.DB, name string) (*pokemondomain.Pokemon, error) {
	return nil, nil
}

func (s *stubRepo) Create(ctx context.Context, db *gorm.DB, fields pokemondomain.CreateFields) (*pokemondomain.Pokemon, error) {
	return nil, s.createErr
}

func (s *stubRepo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, changes pokemondomain.Changes) (*pokemondomain.Pokemon, error) {
	return nil, s.updateErr
}

func (s *stubRepo) Remove(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pokemondomain.Pokemon, error) {
	return nil, nil
}

func TestCreateLostRaceMapsDuplicateKeyToConflict(t *testing.T) {
	svc := New(Params{
		DB:   newTestDB(t),
		Log:  zap.NewNop(),
		Repo: &stubRepo{createErr: &pgconn.PgError{Code: "23505"}},
	})

	if _, err := svc.Create(context.Background(), pikachuRequest()); !errors.Is(err, pokemondomain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken from duplicate-key backstop, got %v", err)
	}
}

func TestUpdateLostRaceMapsDuplicateKeyToConflict(t *testing.T) {
	svc := New(Params{
		DB:   newTestDB(t),
		Log:  zap.NewNop(),
		Repo: &stubRepo{updateErr: &pgconn.PgError{Code: "23505"}},
	})

	name := "Pikachu"
	if _, err := svc.Update(context.Background(), pokemondomain.UpdateRequest{ID: "123", Name: &name}); !errors.Is(err, pokemondomain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken from duplicate-key backstop, got %v", err)
	}
}

func TestCreatePropagatesStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := New(Params{
		DB:   newTestDB(t),
		Log:  zap.NewNop(),
		Repo: &stubRepo{createErr: storeErr},
	})

	if _, err := svc.Create(context.Background(), pikachuRequest()); !errors.Is(err, storeErr) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
}
