package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pokedex/internal/clock"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"gorm.io/gorm"
)

type repo struct {
	genID *snowflake.Node
	clock clock.Clock
}

// Provide builds the gorm-backed repository. Identifier generation and the
// clock are injected so persistence stays deterministic under test.
func Provide(genID *snowflake.Node, clk clock.Clock) pokemondomain.Repository {
	return &repo{genID: genID, clock: clk}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]pokemondomain.Pokemon, error) {
	var rows []pokemondomain.Pokemon
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM pokemon ORDER BY created_at DESC, id DESC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pokemondomain.Pokemon, error) {
	var p pokemondomain.Pokemon
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM pokemon WHERE id = ?`, id).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*pokemondomain.Pokemon, error) {
	var p pokemondomain.Pokemon
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM pokemon WHERE name = ?`, name).
		Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, fields pokemondomain.CreateFields) (*pokemondomain.Pokemon, error) {
	now := r.clock.Now()
	p := pokemondomain.Pokemon{
		ID:        r.genID.Generate(),
		Name:      fields.Name,
		Category:  fields.Category,
		Level:     fields.Level,
		HP:        fields.HP,
		Attack:    fields.Attack,
		Defense:   fields.Defense,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.WithContext(ctx).Exec(`
INSERT INTO pokemon (id, name, category, level, hp, attack, defense, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Level, p.HP, p.Attack, p.Defense, p.CreatedAt, p.UpdatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, changes pokemondomain.Changes) (*pokemondomain.Pokemon, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{r.clock.Now()}
	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *changes.Category)
	}
	if changes.Level != nil {
		sets = append(sets, "level = ?")
		args = append(args, *changes.Level)
	}
	if changes.HP != nil {
		sets = append(sets, "hp = ?")
		args = append(args, *changes.HP)
	}
	if changes.Attack != nil {
		sets = append(sets, "attack = ?")
		args = append(args, *changes.Attack)
	}
	if changes.Defense != nil {
		sets = append(sets, "defense = ?")
		args = append(args, *changes.Defense)
	}
	args = append(args, id)

	res := db.WithContext(ctx).Exec(
		"UPDATE pokemon SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, db, id)
}

func (r *repo) Remove(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pokemondomain.Pokemon, error) {
	existing, err := r.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	res := db.WithContext(ctx).Exec(`DELETE FROM pokemon WHERE id = ?`, id)
	if res.Error != nil {
		return nil, res.Error
	}
	// Row vanished between the read and the delete.
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return existing, nil
}
