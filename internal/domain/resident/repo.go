package resident

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for residents.
type Repository interface {
	Create(ctx context.Context, r *Resident) error
	GetByID(ctx context.Context, id int64) (*Resident, error)
	// GetByCode resolves an access code among active residents,
	// case-insensitively.
	GetByCode(ctx context.Context, code string) (*Resident, error)
	FindBySyncUID(ctx context.Context, uid uuid.UUID) (*Resident, error)
	// FindByName is the legacy natural-key lookup used by callers that do
	// not carry a sync uid.
	FindByName(ctx context.Context, nom, prenom string) (*Resident, error)
	ListActive(ctx context.Context, limit, offset int) ([]*Resident, int, error)
	Update(ctx context.Context, r *Resident) error
	SoftDelete(ctx context.Context, id int64) error
}
