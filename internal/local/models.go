// Package local is the console's sqlite store. It is the authoritative copy
// of residents and availability: the reconciler pushes from here to the
// remote portal API, never the other way.
package local

import (
	"time"

	"github.com/google/uuid"
)

// Resident is the console-side resident row.
type Resident struct {
	ID        int64      `gorm:"primaryKey"`
	Nom       string     `gorm:"not null;index:idx_residents_name"`
	Prenom    string     `gorm:"not null;index:idx_residents_name"`
	Chambre   *string    ``
	CodeAcces string     `gorm:"column:code_acces"`
	SyncUID   *uuid.UUID `gorm:"column:sync_uid;uniqueIndex"`
	Actif     bool       `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Familles   []Famille    `gorm:"foreignKey:ResidentID"`
	RendezVous []RendezVous `gorm:"foreignKey:ResidentID"`
}

// Famille is the console-side family row.
type Famille struct {
	ID                 int64   `gorm:"primaryKey"`
	ResidentID         int64   `gorm:"not null;index"`
	Nom                string  `gorm:"not null"`
	Prenom             string  `gorm:"not null"`
	LienParente        *string `gorm:"column:lien_parente"`
	Email              string  `gorm:"index"`
	Telephone          *string ``
	RegistrationStatus string  `gorm:"column:registration_status;default:pending"`
	Actif              bool    `gorm:"default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RendezVous is the console-side appointment row.
type RendezVous struct {
	ID           int64     `gorm:"primaryKey"`
	ResidentID   int64     `gorm:"not null;index"`
	FamilleID    int64     `gorm:"not null;index"`
	DateRDV      time.Time `gorm:"column:date_rdv;not null;index"`
	DureeMinutes int       `gorm:"column:duree_minutes;default:30"`
	Statut       string    `gorm:"default:En attente"`
	NotesAvant   *string   `gorm:"column:notes_avant"`
	LienJitsi    *string   `gorm:"column:lien_jitsi"`
	RappelEnvoye bool      `gorm:"column:rappel_envoye;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Creneau is the console-side availability row.
type Creneau struct {
	ID          int64  `gorm:"primaryKey"`
	JourSemaine int    `gorm:"column:jour_semaine;not null"`
	HeureDebut  string `gorm:"column:heure_debut;not null"`
	HeureFin    string `gorm:"column:heure_fin;not null"`
	Type        string `gorm:"default:available"`
	Actif       bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Resident) TableName() string   { return "residents" }
func (Famille) TableName() string    { return "familles" }
func (RendezVous) TableName() string { return "rendez_vous" }
func (Creneau) TableName() string    { return "disponibilites" }
