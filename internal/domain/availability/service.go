package availability

import (
	"context"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// OccupiedLister supplies the date+time keys already taken by pending,
// scheduled or confirmed appointments.
type OccupiedLister interface {
	OccupiedKeys(ctx context.Context) ([]string, error)
}

type Service struct {
	repo     Repository
	occupied OccupiedLister
}

func NewService(repo Repository, occupied OccupiedLister) *Service {
	return &Service{repo: repo, occupied: occupied}
}

// Projection returns the recurring bookable windows and the occupied keys
// to exclude from the booking UI. Blocked slots are stored but advisory
// only: they never reach the portal.
func (s *Service) Projection(ctx context.Context) ([]*Creneau, []string, error) {
	slots, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	bookable := make([]*Creneau, 0, len(slots))
	for _, c := range slots {
		if c.Type == TypeAvailable {
			bookable = append(bookable, c)
		}
	}
	keys, err := s.occupied.OccupiedKeys(ctx)
	if err != nil {
		return nil, nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return bookable, keys, nil
}

// SlotInput is one slot pushed from the console's authoritative planning.
type SlotInput struct {
	JourSemaine int    `json:"jour_semaine"`
	HeureDebut  string `json:"heure_debut"`
	HeureFin    string `json:"heure_fin"`
	Type        Type   `json:"type"`
	Actif       *bool  `json:"actif"`
}

// ReplaceAll validates and swaps the whole slot table for the pushed list
// in a single transaction.
func (s *Service) ReplaceAll(ctx context.Context, inputs []SlotInput) (int, error) {
	slots := make([]*Creneau, 0, len(inputs))
	for _, in := range inputs {
		typ := in.Type
		if typ == "" {
			typ = TypeAvailable
		}
		actif := true
		if in.Actif != nil {
			actif = *in.Actif
		}
		c := &Creneau{
			JourSemaine: in.JourSemaine,
			HeureDebut:  in.HeureDebut,
			HeureFin:    in.HeureFin,
			Type:        typ,
			Actif:       actif,
		}
		if err := c.Validate(); err != nil {
			return 0, apperror.Wrap(apperror.KindInvalidInput, "créneau invalide", err)
		}
		slots = append(slots, c)
	}
	if err := s.repo.ReplaceAll(ctx, slots); err != nil {
		return 0, err
	}
	return len(slots), nil
}
