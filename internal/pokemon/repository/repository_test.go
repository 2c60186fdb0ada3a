package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pokedex/internal/clock"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/pkg/db"
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

	if err := gdb.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}

	preparePokemonSchema(t, gdb)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func preparePokemonSchema(t *testing.T, gdb *gorm.DB) {
	t.Helper()

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
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func newTestRepo(t *testing.T, fake *clock.FakeClock) pokemondomain.Repository {
	t.Helper()
	return Provide(mustNode(t), fake)
}

func pikachuFields() pokemondomain.CreateFields {
	return pokemondomain.CreateFields{
		Name:     "Pikachu",
		Category: "Electric",
		Level:    25,
		HP:       35,
		Attack:   55,
		Defense:  40,
	}
}

func TestCreateAssignsIdentityAndTimestamps(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	created, err := repo.Create(ctx, gdb, pikachuFields())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected equal timestamps at creation, got %v vs %v", created.CreatedAt, created.UpdatedAt)
	}

	stored, err := repo.FindByID(ctx, gdb, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if stored == nil {
		t.Fatalf("expected stored record")
	}
	if stored.Name != "Pikachu" || stored.Category != "Electric" || stored.Level != 25 {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
	if stored.HP != 35 || stored.Attack != 55 || stored.Defense != 40 {
		t.Fatalf("unexpected stored scores: %+v", stored)
	}
}

func TestFindMissingReturnsNil(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	byID, err := repo.FindByID(ctx, gdb, snowflake.ID(12345))
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID != nil {
		t.Fatalf("expected nil for missing id, got %+v", byID)
	}

	byName, err := repo.FindByName(ctx, gdb, "Mewtwo")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if byName != nil {
		t.Fatalf("expected nil for missing name, got %+v", byName)
	}
}

func TestFindByNameIsCaseSensitive(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	if _, err := repo.Create(ctx, gdb, pikachuFields()); err != nil {
		t.Fatalf("create: %v", err)
	}

	lower, err := repo.FindByName(ctx, gdb, "pikachu")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if lower != nil {
		t.Fatalf("expected case-sensitive lookup to miss, got %+v", lower)
	}
}

func TestListOrdersByCreationDesc(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	names := []string{"Bulbasaur", "Charmander", "Squirtle"}
	for _, name := range names {
		fields := pikachuFields()
		fields.Name = name
		if _, err := repo.Create(ctx, gdb, fields); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		fake.Advance(time.Second)
	}

	rows, err := repo.List(ctx, gdb)
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

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	created, err := repo.Create(ctx, gdb, pikachuFields())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Advance(time.Minute)
	level := 30
	updated, err := repo.Update(ctx, gdb, created.ID, pokemondomain.Changes{Level: &level})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil {
		t.Fatalf("expected updated record")
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
		t.Fatalf("created_at must not change: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must advance: %v vs %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateMissingReturnsNil(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	level := 50
	updated, err := repo.Update(ctx, gdb, snowflake.ID(999), pokemondomain.Changes{Level: &level})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated != nil {
		t.Fatalf("expected nil for missing row, got %+v", updated)
	}
}

func TestRemoveReturnsRecordThenNil(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	created, err := repo.Create(ctx, gdb, pikachuFields())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := repo.Remove(ctx, gdb, created.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed == nil || removed.ID != created.ID {
		t.Fatalf("expected removed record %v, got %+v", created.ID, removed)
	}

	again, err := repo.Remove(ctx, gdb, created.ID)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nil on second remove, got %+v", again)
	}
}

func TestCreateDuplicateNameHitsUniqueIndex(t *testing.T) {
	gdb := newTestDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := newTestRepo(t, fake)
	ctx := context.Background()

	if _, err := repo.Create(ctx, gdb, pikachuFields()); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := repo.Create(ctx, gdb, pikachuFields())
	if err == nil {
		t.Fatalf("expected unique violation")
	}
	if !db.IsDuplicateKeyErr(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
