package resident

import (
	"time"

	"github.com/google/uuid"
)

// Resident maps to the residents table.
type Resident struct {
	ID        int64      `db:"id" json:"id"`
	Nom       string     `db:"nom" json:"nom"`
	Prenom    string     `db:"prenom" json:"prenom"`
	Chambre   *string    `db:"chambre" json:"chambre,omitempty"`
	CodeAcces string     `db:"code_acces" json:"-"`
	SyncUID   *uuid.UUID `db:"sync_uid" json:"sync_uid,omitempty"`
	Actif     bool       `db:"actif" json:"actif"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Public returns the resident fields exposed to the family portal.
func (r *Resident) Public() map[string]interface{} {
	out := map[string]interface{}{
		"id":     r.ID,
		"nom":    r.Nom,
		"prenom": r.Prenom,
	}
	if r.Chambre != nil {
		out["chambre"] = *r.Chambre
	}
	return out
}
