// Package availability projects the recurring bookable windows and the
// concrete already-taken slots the portal must grey out.
package availability

import (
	"fmt"
	"time"
)

// Type distinguishes bookable windows from advisory blocked ones.
type Type string

const (
	TypeAvailable Type = "available"
	TypeBlocked   Type = "blocked"
)

// Creneau maps to the disponibilites table. JourSemaine counts from
// Monday=0 to Sunday=6; hours are "HH:MM" strings as displayed.
type Creneau struct {
	ID          int64     `db:"id" json:"id"`
	JourSemaine int       `db:"jour_semaine" json:"jour_semaine"`
	HeureDebut  string    `db:"heure_debut" json:"heure_debut"`
	HeureFin    string    `db:"heure_fin" json:"heure_fin"`
	Type        Type      `db:"type" json:"type"`
	Actif       bool      `db:"actif" json:"actif"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Public returns the slot fields the portal consumes.
func (c *Creneau) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":           c.ID,
		"jour_semaine": c.JourSemaine,
		"heure_debut":  c.HeureDebut,
		"heure_fin":    c.HeureFin,
	}
}

// Validate checks the slot's shape before it is accepted from the console.
func (c *Creneau) Validate() error {
	if c.JourSemaine < 0 || c.JourSemaine > 6 {
		return fmt.Errorf("jour_semaine %d hors de [0,6]", c.JourSemaine)
	}
	for _, h := range []string{c.HeureDebut, c.HeureFin} {
		if _, err := time.Parse("15:04", h); err != nil {
			return fmt.Errorf("heure invalide %q", h)
		}
	}
	if c.HeureFin <= c.HeureDebut {
		return fmt.Errorf("créneau inversé %s-%s", c.HeureDebut, c.HeureFin)
	}
	if c.Type != TypeAvailable && c.Type != TypeBlocked {
		return fmt.Errorf("type inconnu %q", c.Type)
	}
	return nil
}
