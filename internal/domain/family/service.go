package family

import (
	"context"
	"strings"

	"github.com/nyny77/mely-api/internal/domain/resident"
	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/internal/platform/auth"
	"github.com/nyny77/mely-api/internal/platform/notification"
)

// ResidentDirectory is the slice of the resident service the family flows
// need: resolving an access code at registration and loading the linked
// resident at login.
type ResidentDirectory interface {
	Get(ctx context.Context, id int64) (*resident.Resident, error)
	VerifyCode(ctx context.Context, code string) (*resident.Resident, error)
}

type Service struct {
	repo      Repository
	residents ResidentDirectory
	tokens    *auth.TokenIssuer
	notifier  *notification.Notifier
}

func NewService(repo Repository, residents ResidentDirectory, tokens *auth.TokenIssuer, notifier *notification.Notifier) *Service {
	return &Service{repo: repo, residents: residents, tokens: tokens, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, id int64) (*Famille, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByResident(ctx context.Context, residentID int64) ([]*Famille, error) {
	return s.repo.ListByResident(ctx, residentID)
}

func (s *Service) ListPending(ctx context.Context) ([]*Famille, error) {
	return s.repo.ListPending(ctx)
}

// LoginResult carries everything the portal needs after a successful login.
type LoginResult struct {
	Token    string
	Famille  *Famille
	Resident *resident.Resident
}

// Login authenticates a family member. Every failure mode, unknown email,
// wrong password, pending or disabled account, collapses into the same
// Unauthorized so the response does not reveal which credential was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "email et mot de passe requis")
	}

	invalid := apperror.New(apperror.KindUnauthorized, "identifiants invalides")

	f, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !VerifyPassword(password, f.PasswordHash) || !f.CanLogIn() {
		return nil, invalid
	}

	res, err := s.residents.Get(ctx, f.ResidentID)
	if err != nil {
		return nil, err
	}
	if !res.Actif {
		return nil, invalid
	}

	token, err := s.tokens.Issue(f.ID, f.ResidentID, f.Email)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "émission du jeton de session", err)
	}
	return &LoginResult{Token: token, Famille: f, Resident: res}, nil
}

// RegisterInput is a portal self-registration request.
type RegisterInput struct {
	CodeAcces   string `json:"code_acces"`
	Nom         string `json:"nom"`
	Prenom      string `json:"prenom"`
	LienParente string `json:"lien_parente"`
	Email       string `json:"email"`
	Telephone   string `json:"telephone"`
	Password    string `json:"password"`
}

// Register creates a pending family account bound to the resident whose
// access code was supplied. The account cannot log in until staff approve it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Famille, error) {
	in.Nom = strings.TrimSpace(in.Nom)
	in.Prenom = strings.TrimSpace(in.Prenom)
	in.Email = strings.TrimSpace(in.Email)
	if in.Nom == "" || in.Prenom == "" || in.Email == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "nom, prénom et email requis")
	}
	if len(in.Password) < 6 {
		return nil, apperror.New(apperror.KindInvalidInput, "mot de passe trop court (6 caractères minimum)")
	}

	res, err := s.residents.VerifyCode(ctx, in.CodeAcces)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.New(apperror.KindInvalidInput, "un compte existe déjà avec cet email")
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "hachage du mot de passe", err)
	}

	f := &Famille{
		ResidentID:         res.ID,
		Nom:                in.Nom,
		Prenom:             in.Prenom,
		Email:              in.Email,
		PasswordHash:       hash,
		RegistrationStatus: RegistrationPending,
		Actif:              true,
	}
	if in.LienParente != "" {
		f.LienParente = &in.LienParente
	}
	if in.Telephone != "" {
		f.Telephone = &in.Telephone
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Approve grants portal access to a pending registration and mails the
// family. Approving an already approved account is a no-op; a rejected one
// must be re-registered.
func (s *Service) Approve(ctx context.Context, id int64) (*Famille, bool, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	switch f.RegistrationStatus {
	case RegistrationApproved:
		return f, false, nil
	case RegistrationRejected:
		return nil, false, apperror.New(apperror.KindInvalidTransition, "inscription déjà refusée")
	}

	f.RegistrationStatus = RegistrationApproved
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, false, err
	}
	sent := s.notifyValidation(ctx, notification.KindValidationApproved, f)
	return f, sent, nil
}

// Reject refuses a pending registration and mails the family.
func (s *Service) Reject(ctx context.Context, id int64) (*Famille, bool, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	switch f.RegistrationStatus {
	case RegistrationRejected:
		return f, false, nil
	case RegistrationApproved:
		return nil, false, apperror.New(apperror.KindInvalidTransition, "inscription déjà approuvée")
	}

	f.RegistrationStatus = RegistrationRejected
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, false, err
	}
	sent := s.notifyValidation(ctx, notification.KindValidationRejected, f)
	return f, sent, nil
}

func (s *Service) notifyValidation(ctx context.Context, kind notification.Kind, f *Famille) bool {
	data := map[string]string{"famille": f.Prenom + " " + f.Nom}
	if res, err := s.residents.Get(ctx, f.ResidentID); err == nil {
		data["resident"] = res.Prenom + " " + res.Nom
	}
	return s.notifier.Notify(ctx, kind, f.Email, data)
}

// SoftDelete deactivates a family account.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
