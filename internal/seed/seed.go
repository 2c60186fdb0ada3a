package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"gorm.io/gorm"
)

type starter struct {
	Name     string
	Category string
	Level    int
	HP       int
	Attack   int
	Defense  int
}

// Classic first-stage starters with their base stats.
var starters = []starter{
	{Name: "Bulbasaur", Category: "Grass", Level: 5, HP: 45, Attack: 49, Defense: 49},
	{Name: "Charmander", Category: "Fire", Level: 5, HP: 39, Attack: 52, Defense: 43},
	{Name: "Squirtle", Category: "Water", Level: 5, HP: 44, Attack: 48, Defense: 65},
	{Name: "Pikachu", Category: "Electric", Level: 5, HP: 35, Attack: 55, Defense: 40},
}

// EnsureStarters seeds the starter records for local and demo setups.
// Records whose name already exists are left untouched, so repeated
// startups are safe.
func EnsureStarters(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range starters {
			if err := ensureStarterTx(ctx, tx, node, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureStarterTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, s starter) error {
	var existing pokemondomain.Pokemon
	err := tx.WithContext(ctx).Where("name = ?", s.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	record := pokemondomain.Pokemon{
		ID:        node.Generate(),
		Name:      s.Name,
		Category:  s.Category,
		Level:     s.Level,
		HP:        s.HP,
		Attack:    s.Attack,
		Defense:   s.Defense,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&record).Error
}
