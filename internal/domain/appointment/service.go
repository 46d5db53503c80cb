package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nyny77/mely-api/internal/domain/family"
	"github.com/nyny77/mely-api/internal/domain/resident"
	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/internal/platform/notification"
	"github.com/nyny77/mely-api/internal/platform/videocall"
)

// ResidentDirectory resolves the resident side of a rendez-vous.
type ResidentDirectory interface {
	Get(ctx context.Context, id int64) (*resident.Resident, error)
}

// FamilyDirectory resolves the family side of a rendez-vous.
type FamilyDirectory interface {
	Get(ctx context.Context, id int64) (*family.Famille, error)
}

type Service struct {
	repo      Repository
	residents ResidentDirectory
	familles  FamilyDirectory
	rooms     *videocall.Allocator
	notifier  *notification.Notifier
}

func NewService(repo Repository, residents ResidentDirectory, familles FamilyDirectory,
	rooms *videocall.Allocator, notifier *notification.Notifier) *Service {
	return &Service{repo: repo, residents: residents, familles: familles, rooms: rooms, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, id int64) (*RendezVous, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListNonTerminalByFamily(ctx context.Context, familleID int64) ([]*RendezVous, error) {
	return s.repo.ListNonTerminalByFamily(ctx, familleID)
}

// OccupiedKeys returns the concrete date+time keys taken by appointments
// still counting against a slot, for the availability projection.
func (s *Service) OccupiedKeys(ctx context.Context) ([]string, error) {
	items, err := s.repo.ListOccupied(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for _, rv := range items {
		keys = append(keys, rv.OccupiedKey())
	}
	return keys, nil
}

// RequestInput is a family's booking request as posted by the portal.
type RequestInput struct {
	ResidentID int64  `json:"resident_id"`
	FamilleID  int64  `json:"famille_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Duration   int    `json:"duration"`
	Message    string `json:"message"`
}

// SubmitRequest validates a booking request, allocates the call-room link and
// persists the rendez-vous as "En attente". No notification fires here: mail
// only goes out on the later staff decision.
func (s *Service) SubmitRequest(ctx context.Context, in RequestInput) (*RendezVous, error) {
	dateRDV, err := time.Parse("2006-01-02 15:04", in.Date+" "+in.Time)
	if err != nil {
		return nil, apperror.New(apperror.KindInvalidInput,
			fmt.Sprintf("date ou heure invalide : %q %q", in.Date, in.Time))
	}

	res, err := s.residents.Get(ctx, in.ResidentID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.New(apperror.KindInvalidInput, "résident inconnu")
		}
		return nil, err
	}
	if !res.Actif {
		return nil, apperror.New(apperror.KindInvalidInput, "résident inactif")
	}
	fam, err := s.familles.Get(ctx, in.FamilleID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.New(apperror.KindInvalidInput, "famille inconnue")
		}
		return nil, err
	}
	if !fam.CanLogIn() {
		return nil, apperror.New(apperror.KindInvalidInput, "compte famille non validé")
	}
	if fam.ResidentID != res.ID {
		return nil, apperror.New(apperror.KindInvalidInput, "cette famille n'est pas rattachée à ce résident")
	}

	duration := in.Duration
	if duration <= 0 {
		duration = 30
	}

	lien, err := s.rooms.NewRoomURL()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "allocation du lien d'appel", err)
	}

	rv := &RendezVous{
		ResidentID:   res.ID,
		FamilleID:    fam.ID,
		DateRDV:      dateRDV,
		DureeMinutes: duration,
		Statut:       StatutEnAttente,
		LienJitsi:    &lien,
		RappelEnvoye: false,
	}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		rv.NotesAvant = &msg
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) transition(ctx context.Context, id int64, next Statut) (*RendezVous, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rv.Statut.CanTransitionTo(next) {
		return nil, apperror.New(apperror.KindInvalidTransition,
			fmt.Sprintf("transition impossible de %q vers %q", rv.Statut, next))
	}
	rv.Statut = next
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Approve moves a pending request to "Planifié". The call link is allocated
// only if the request somehow lacks one; a link already present is kept, so
// approving twice never rotates the URL. Fires the confirmation email
// best-effort and reports whether it went out.
func (s *Service) Approve(ctx context.Context, id int64) (*RendezVous, bool, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if rv.Statut == StatutPlanifie {
		// already approved; keep the existing link and do not resend mail
		return rv, false, nil
	}
	if !rv.Statut.CanTransitionTo(StatutPlanifie) {
		return nil, false, apperror.New(apperror.KindInvalidTransition,
			fmt.Sprintf("transition impossible de %q vers %q", rv.Statut, StatutPlanifie))
	}
	if rv.LienJitsi == nil || *rv.LienJitsi == "" {
		lien, err := s.rooms.NewRoomURL()
		if err != nil {
			return nil, false, apperror.Wrap(apperror.KindStore, "allocation du lien d'appel", err)
		}
		rv.LienJitsi = &lien
	}
	rv.Statut = StatutPlanifie
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, false, err
	}
	sent := s.notify(ctx, notification.KindConfirmation, rv)
	return rv, sent, nil
}

// Reject refuses a pending request. Terminal: nothing leaves "Refusé".
func (s *Service) Reject(ctx context.Context, id int64) (*RendezVous, bool, error) {
	rv, err := s.transition(ctx, id, StatutRefuse)
	if err != nil {
		return nil, false, err
	}
	sent := s.notify(ctx, notification.KindRejection, rv)
	return rv, sent, nil
}

// Cancel aborts a rendez-vous that has not started yet.
func (s *Service) Cancel(ctx context.Context, id int64) (*RendezVous, bool, error) {
	rv, err := s.transition(ctx, id, StatutAnnule)
	if err != nil {
		return nil, false, err
	}
	sent := s.notify(ctx, notification.KindCancellation, rv)
	return rv, sent, nil
}

// Confirm marks a scheduled rendez-vous as confirmed by the family.
func (s *Service) Confirm(ctx context.Context, id int64) (*RendezVous, error) {
	return s.transition(ctx, id, StatutConfirme)
}

// Start moves a scheduled or confirmed rendez-vous to "En cours". The call
// cannot start without its room link.
func (s *Service) Start(ctx context.Context, id int64) (*RendezVous, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rv.Statut.CanTransitionTo(StatutEnCours) {
		return nil, apperror.New(apperror.KindInvalidTransition,
			fmt.Sprintf("transition impossible de %q vers %q", rv.Statut, StatutEnCours))
	}
	if rv.LienJitsi == nil || *rv.LienJitsi == "" {
		return nil, apperror.New(apperror.KindMissingResource, "aucun lien d'appel alloué pour ce rendez-vous")
	}
	rv.Statut = StatutEnCours
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Complete marks the rendez-vous as done.
func (s *Service) Complete(ctx context.Context, id int64) (*RendezVous, error) {
	return s.transition(ctx, id, StatutTermine)
}

// HardDelete removes a non-terminal rendez-vous outright, distinct from
// cancelling it. Terminal rows are kept as history.
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rv.Statut.Terminal() {
		return apperror.New(apperror.KindInvalidTransition, "un rendez-vous terminé ne peut pas être supprimé")
	}
	return s.repo.HardDelete(ctx, id)
}

// SendReminders mails the families of appointments starting within the
// window and flags them so the reminder never repeats. Delivery failures
// leave the flag unset for the next pass.
func (s *Service) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	due, err := s.repo.ListDueForReminder(ctx, time.Now().Add(window))
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rv := range due {
		if !s.notify(ctx, notification.KindReminder, rv) {
			continue
		}
		rv.RappelEnvoye = true
		if err := s.repo.Update(ctx, rv); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *Service) notify(ctx context.Context, kind notification.Kind, rv *RendezVous) bool {
	fam, err := s.familles.Get(ctx, rv.FamilleID)
	if err != nil {
		return false
	}
	data := map[string]string{
		"famille": fam.Prenom + " " + fam.Nom,
		"date":    rv.DateRDV.Format("02/01/2006"),
		"heure":   rv.DateRDV.Format("15:04"),
	}
	if res, err := s.residents.Get(ctx, rv.ResidentID); err == nil {
		data["resident"] = res.Prenom + " " + res.Nom
	}
	if rv.LienJitsi != nil {
		data["lien"] = *rv.LienJitsi
	}
	return s.notifier.Notify(ctx, kind, fam.Email, data)
}
