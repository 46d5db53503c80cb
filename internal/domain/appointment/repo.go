package appointment

import (
	"context"
	"time"
)

// Repository is the persistence boundary for rendez-vous.
type Repository interface {
	Create(ctx context.Context, r *RendezVous) error
	GetByID(ctx context.Context, id int64) (*RendezVous, error)
	// ListNonTerminalByFamily returns the family's appointments still in
	// {En attente, Planifié, Confirmé}, ordered by date.
	ListNonTerminalByFamily(ctx context.Context, familleID int64) ([]*RendezVous, error)
	// ListOccupied returns all appointments occupying a slot, regardless
	// of family, for the availability projection.
	ListOccupied(ctx context.Context) ([]*RendezVous, error)
	// ListDueForReminder returns confirmed or scheduled appointments
	// starting within the window whose reminder has not gone out yet.
	ListDueForReminder(ctx context.Context, until time.Time) ([]*RendezVous, error)
	Update(ctx context.Context, r *RendezVous) error
	// HardDelete removes the row. Terminality is the service's concern.
	HardDelete(ctx context.Context, id int64) error
}
