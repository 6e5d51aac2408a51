package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Faction is the in-game faction a character belongs to.
type Faction string

// The closed set of factions. New characters always start in FactionNone.
const (
	FactionNone       Faction = "None"
	FactionShaolin    Faction = "Shaolin"
	FactionTangClan   Faction = "Tang Clan"
	FactionFivePoison Faction = "Five Poison"
	FactionBeggarSect Faction = "Beggar Sect"
	FactionWudang     Faction = "Wudang"
	FactionEmei       Faction = "Emei"
	FactionRoyalGuard Faction = "Royal Guard"
	FactionKunlun     Faction = "Kunlun"
)

// Factions lists every valid faction value.
var Factions = []Faction{
	FactionNone,
	FactionShaolin,
	FactionTangClan,
	FactionFivePoison,
	FactionBeggarSect,
	FactionWudang,
	FactionEmei,
	FactionRoyalGuard,
	FactionKunlun,
}

// Valid reports whether f is one of the known factions.
func (f Faction) Valid() bool {
	for _, known := range Factions {
		if f == known {
			return true
		}
	}
	return false
}

// MaxCharactersPerAccount caps how many characters a single account may own.
const MaxCharactersPerAccount = 10

// Character represents a game character owned by a User. Level and gold are
// server-authoritative and never mutated through the portal; jpoint changes
// only via transfers between two characters of the same owner. NameKey is
// the lowercased name; the partial unique index on it makes per-owner name
// uniqueness hold even when two inserts race, while soft-deleted rows do not
// block the name from being reused.
type Character struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string  `json:"user_id" gorm:"index;type:varchar(36);uniqueIndex:uniq_owner_name_key,where:deleted_at IS NULL"`
	Name       string  `json:"name" gorm:"type:varchar(16)" validate:"required,min=2,max=16"`
	NameKey    string  `json:"-" gorm:"type:varchar(16);uniqueIndex:uniq_owner_name_key,where:deleted_at IS NULL"`
	Faction    Faction `json:"faction" gorm:"type:varchar(32)"`
	Level      int     `json:"level" validate:"gte=1"`
	JPoint     int64   `json:"jpoint" gorm:"column:jpoint" validate:"gte=0"`
	Gold       int64   `json:"gold" validate:"gte=0"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// BeforeSave keeps the uniqueness key in step with the name.
func (c *Character) BeforeSave(tx *gorm.DB) error {
	c.NameKey = strings.ToLower(c.Name)
	return nil
}

// PublicCharacter is the projection of a Character that is returned to
// clients. It carries none of the GORM bookkeeping columns.
type PublicCharacter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Faction   Faction   `json:"faction"`
	Level     int       `json:"level"`
	JPoint    int64     `json:"jpoint"`
	Gold      int64     `json:"gold"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the client-facing projection of the character.
func (c *Character) Public() PublicCharacter {
	return PublicCharacter{
		ID:        c.ID,
		Name:      c.Name,
		Faction:   c.Faction,
		Level:     c.Level,
		JPoint:    c.JPoint,
		Gold:      c.Gold,
		CreatedAt: c.CreatedAt,
	}
}

// PublicCharacters projects a slice of characters for list responses.
func PublicCharacters(characters []Character) []PublicCharacter {
	out := make([]PublicCharacter, 0, len(characters))
	for i := range characters {
		out = append(out, characters[i].Public())
	}
	return out
}
