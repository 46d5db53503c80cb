package resident

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Resident, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Resident, int, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

// VerifyCode resolves an access code to its active resident. An unknown code
// is a NotFound, never an empty success.
func (s *Service) VerifyCode(ctx context.Context, code string) (*Resident, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "code d'accès requis")
	}
	res, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.New(apperror.KindNotFound, "code d'accès invalide")
		}
		return nil, err
	}
	return res, nil
}

// SyncInput is one resident pushed from the authoritative console store.
type SyncInput struct {
	Nom       string     `json:"nom"`
	Prenom    string     `json:"prenom"`
	Chambre   *string    `json:"chambre"`
	CodeAcces string     `json:"code_acces"`
	SyncUID   *uuid.UUID `json:"sync_uid"`
	Actif     *bool      `json:"actif"`
}

// Sync upserts a resident pushed by the reconciler. Rows carrying a sync uid
// are matched on it, so a rename updates in place. Legacy callers without a
// uid fall back to the (nom, prenom) natural key; a rename through that path
// creates a duplicate rather than an update.
func (s *Service) Sync(ctx context.Context, in SyncInput) (string, *Resident, error) {
	if strings.TrimSpace(in.Nom) == "" || strings.TrimSpace(in.Prenom) == "" {
		return "", nil, apperror.New(apperror.KindInvalidInput, "nom et prénom requis")
	}

	existing, err := s.findExisting(ctx, in)
	if err != nil {
		return "", nil, err
	}

	actif := true
	if in.Actif != nil {
		actif = *in.Actif
	}

	if existing == nil {
		res := &Resident{
			Nom:       in.Nom,
			Prenom:    in.Prenom,
			Chambre:   in.Chambre,
			CodeAcces: in.CodeAcces,
			SyncUID:   in.SyncUID,
			Actif:     actif,
		}
		if err := s.repo.Create(ctx, res); err != nil {
			return "", nil, err
		}
		return "created", res, nil
	}

	existing.Nom = in.Nom
	existing.Prenom = in.Prenom
	existing.Chambre = in.Chambre
	existing.CodeAcces = in.CodeAcces
	existing.Actif = actif
	if in.SyncUID != nil {
		existing.SyncUID = in.SyncUID
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return "", nil, err
	}
	return "updated", existing, nil
}

func (s *Service) findExisting(ctx context.Context, in SyncInput) (*Resident, error) {
	if in.SyncUID != nil {
		res, err := s.repo.FindBySyncUID(ctx, *in.SyncUID)
		if err == nil {
			return res, nil
		}
		if apperror.KindOf(err) != apperror.KindNotFound {
			return nil, err
		}
	}
	res, err := s.repo.FindByName(ctx, in.Nom, in.Prenom)
	if err == nil {
		return res, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}
	return nil, nil
}

// SoftDelete deactivates a resident. Families and appointments are left
// untouched; the cascading hard delete exists only in the console store.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
