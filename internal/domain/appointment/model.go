// Package appointment carries the video-visit booking workflow: families
// request a call, staff drive it through the status lifecycle.
package appointment

import "time"

// Statut is the lifecycle status of a rendez-vous. The wire values are the
// French labels the portal and console display as-is.
type Statut string

const (
	StatutEnAttente Statut = "En attente"
	StatutPlanifie  Statut = "Planifié"
	StatutConfirme  Statut = "Confirmé"
	StatutRefuse    Statut = "Refusé"
	StatutAnnule    Statut = "Annulé"
	StatutEnCours   Statut = "En cours"
	StatutTermine   Statut = "Terminé"
)

// transitions lists the legal next statuses for each status. Anything not in
// the table is an invalid transition; terminal statuses have no entry.
var transitions = map[Statut][]Statut{
	StatutEnAttente: {StatutPlanifie, StatutRefuse, StatutAnnule},
	StatutPlanifie:  {StatutConfirme, StatutAnnule, StatutEnCours, StatutTermine},
	StatutConfirme:  {StatutAnnule, StatutEnCours, StatutTermine},
	StatutEnCours:   {StatutTermine},
}

// Valid reports whether s is one of the seven known statuses.
func (s Statut) Valid() bool {
	switch s {
	case StatutEnAttente, StatutPlanifie, StatutConfirme, StatutRefuse,
		StatutAnnule, StatutEnCours, StatutTermine:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Statut) Terminal() bool {
	switch s {
	case StatutRefuse, StatutAnnule, StatutTermine:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal transition.
func (s Statut) CanTransitionTo(next Statut) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NonTerminalStatuts are the statuses shown to families and counted as
// occupying a slot.
var NonTerminalStatuts = []Statut{StatutEnAttente, StatutPlanifie, StatutConfirme}

// RendezVous maps to the rendez_vous table. DateRDV is stored in UTC.
type RendezVous struct {
	ID           int64     `db:"id" json:"id"`
	ResidentID   int64     `db:"resident_id" json:"resident_id"`
	FamilleID    int64     `db:"famille_id" json:"famille_id"`
	DateRDV      time.Time `db:"date_rdv" json:"date_rdv"`
	DureeMinutes int       `db:"duree_minutes" json:"duree_minutes"`
	Statut       Statut    `db:"statut" json:"statut"`
	NotesAvant   *string   `db:"notes_avant" json:"notes_avant,omitempty"`
	LienJitsi    *string   `db:"lien_jitsi" json:"lien_jitsi,omitempty"`
	RappelEnvoye bool      `db:"rappel_envoye" json:"rappel_envoye"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Public returns the rendez-vous fields the portal consumes.
func (r *RendezVous) Public() map[string]interface{} {
	out := map[string]interface{}{
		"id":     r.ID,
		"date":   r.DateRDV.Format("2006-01-02"),
		"heure":  r.DateRDV.Format("15:04"),
		"duree":  r.DureeMinutes,
		"statut": r.Statut,
	}
	if r.LienJitsi != nil {
		out["lien"] = *r.LienJitsi
	}
	return out
}

// OccupiedKey is the concrete slot key excluded from booking, formatted as
// YYYY-MM-DD_HH:MM.
func (r *RendezVous) OccupiedKey() string {
	return r.DateRDV.Format("2006-01-02_15:04")
}
