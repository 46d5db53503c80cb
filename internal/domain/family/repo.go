package family

import "context"

// Repository is the persistence contract for families.
type Repository interface {
	Create(ctx context.Context, f *Famille) error
	GetByID(ctx context.Context, id int64) (*Famille, error)
	// GetByEmail matches the login identity among active families.
	GetByEmail(ctx context.Context, email string) (*Famille, error)
	ListByResident(ctx context.Context, residentID int64) ([]*Famille, error)
	ListPending(ctx context.Context) ([]*Famille, error)
	Update(ctx context.Context, f *Famille) error
	SoftDelete(ctx context.Context, id int64) error
}
