package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Pokemon is a single creature record. Name is globally unique and
// case-sensitive; CreatedAt never changes after insert.
type Pokemon struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"not null;uniqueIndex:ux_pokemon_name"`
	Category  string       `json:"category" gorm:"not null"`
	Level     int          `json:"level" gorm:"not null"`
	HP        int          `json:"hp" gorm:"column:hp;not null"`
	Attack    int          `json:"attack" gorm:"not null"`
	Defense   int          `json:"defense" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Pokemon) TableName() string {
	return "pokemon"
}
