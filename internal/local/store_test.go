package local

import (
	"testing"
	"time"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedResident(t *testing.T, s *Store) *Resident {
	t.Helper()
	r := &Resident{Nom: "Dupont", Prenom: "Marcel", CodeAcces: "MARCEL2024", Actif: true}
	if err := s.CreateResident(r); err != nil {
		t.Fatalf("CreateResident: %v", err)
	}
	return r
}

func TestCreateResident_StampsSyncUID(t *testing.T) {
	s := newTestStore(t)
	r := seedResident(t, s)

	if r.SyncUID == nil {
		t.Fatal("expected a sync uid on creation")
	}
	got, err := s.GetResident(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SyncUID == nil || *got.SyncUID != *r.SyncUID {
		t.Error("sync uid must persist")
	}
}

func TestListResidents_IncludesDeactivated(t *testing.T) {
	s := newTestStore(t)
	r := seedResident(t, s)
	r.Actif = false
	if err := s.UpdateResident(r); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListActiveResidents()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("active residents = %d, want 0", len(active))
	}

	all, err := s.ListResidents()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Actif {
		t.Fatalf("ListResidents = %+v, want the deactivated row", all)
	}
}

func TestHardDeleteResident_Cascades(t *testing.T) {
	s := newTestStore(t)
	r := seedResident(t, s)
	f := &Famille{ResidentID: r.ID, Nom: "Dupont", Prenom: "Julie",
		Email: "julie@example.com", RegistrationStatus: "approved", Actif: true}
	if err := s.CreateFamille(f); err != nil {
		t.Fatal(err)
	}
	rv := &RendezVous{ResidentID: r.ID, FamilleID: f.ID,
		DateRDV: time.Now().Add(24 * time.Hour), DureeMinutes: 30, Statut: "En attente"}
	if err := s.CreateRendezVous(rv); err != nil {
		t.Fatal(err)
	}

	if err := s.HardDeleteResident(r.ID); err != nil {
		t.Fatalf("HardDeleteResident: %v", err)
	}

	if _, err := s.GetResident(r.ID); apperror.KindOf(err) != apperror.KindNotFound {
		t.Error("resident must be gone")
	}
	familles, err := s.ListFamillesByResident(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(familles) != 0 {
		t.Errorf("families must be cascaded, got %d", len(familles))
	}
	rdvs, err := s.ListRendezVousBetween(time.Now().Add(-time.Hour), time.Now().Add(48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(rdvs) != 0 {
		t.Errorf("rendez-vous must be cascaded, got %d", len(rdvs))
	}
}

func TestHardDeleteResident_Unknown(t *testing.T) {
	s := newTestStore(t)

	err := s.HardDeleteResident(99)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestCountPending(t *testing.T) {
	s := newTestStore(t)
	r := seedResident(t, s)

	for _, status := range []string{"pending", "pending", "approved"} {
		f := &Famille{ResidentID: r.ID, Nom: "Dupont", Prenom: "Julie",
			RegistrationStatus: status, Actif: true}
		if err := s.CreateFamille(f); err != nil {
			t.Fatal(err)
		}
	}
	approved, err := s.ListFamillesByResident(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, statut := range []string{"En attente", "Planifié"} {
		rv := &RendezVous{ResidentID: r.ID, FamilleID: approved[0].ID,
			DateRDV: time.Now().Add(24 * time.Hour), Statut: statut}
		if err := s.CreateRendezVous(rv); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.CountPending()
	if err != nil {
		t.Fatalf("CountPending: %v", err)
	}
	if counts.Inscriptions != 2 {
		t.Errorf("Inscriptions = %d, want 2", counts.Inscriptions)
	}
	if counts.RendezVous != 1 {
		t.Errorf("RendezVous = %d, want 1", counts.RendezVous)
	}
}

func TestListActiveCreneaux(t *testing.T) {
	s := newTestStore(t)
	for _, c := range []*Creneau{
		{JourSemaine: 2, HeureDebut: "10:00", HeureFin: "12:00", Type: "available", Actif: true},
		{JourSemaine: 0, HeureDebut: "14:00", HeureFin: "17:00", Type: "available", Actif: true},
		{JourSemaine: 4, HeureDebut: "09:00", HeureFin: "10:00", Type: "available", Actif: false},
	} {
		if err := s.SaveCreneau(c); err != nil {
			t.Fatal(err)
		}
	}

	items, err := s.ListActiveCreneaux()
	if err != nil {
		t.Fatalf("ListActiveCreneaux: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].JourSemaine != 0 {
		t.Error("slots must be ordered by day then hour")
	}
}
