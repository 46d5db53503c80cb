package resident

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// -- Mock Repository --

type mockRepo struct {
	nextID    int64
	residents map[int64]*Resident
}

func newMockRepo() *mockRepo {
	return &mockRepo{residents: make(map[int64]*Resident)}
}

func (m *mockRepo) Create(_ context.Context, r *Resident) error {
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.residents[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Resident, error) {
	r, ok := m.residents[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	return r, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Resident, error) {
	for _, r := range m.residents {
		if r.Actif && strings.EqualFold(r.CodeAcces, code) {
			return r, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
}

func (m *mockRepo) FindBySyncUID(_ context.Context, uid uuid.UUID) (*Resident, error) {
	for _, r := range m.residents {
		if r.SyncUID != nil && *r.SyncUID == uid {
			return r, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
}

func (m *mockRepo) FindByName(_ context.Context, nom, prenom string) (*Resident, error) {
	for _, r := range m.residents {
		if r.Nom == nom && r.Prenom == prenom {
			return r, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
}

func (m *mockRepo) ListActive(_ context.Context, limit, offset int) ([]*Resident, int, error) {
	var items []*Resident
	for _, r := range m.residents {
		if r.Actif {
			items = append(items, r)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) Update(_ context.Context, r *Resident) error {
	if _, ok := m.residents[r.ID]; !ok {
		return apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	m.residents[r.ID] = r
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id int64) error {
	r, ok := m.residents[id]
	if !ok || !r.Actif {
		return apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	r.Actif = false
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

// -- Tests --

func TestVerifyCode(t *testing.T) {
	svc, repo := newTestService()
	repo.Create(context.Background(), &Resident{Nom: "Dupont", Prenom: "Jean", CodeAcces: "AB12", Actif: true})

	res, err := svc.VerifyCode(context.Background(), "ab12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Nom != "Dupont" {
		t.Errorf("unexpected resident: %+v", res)
	}
}

func TestVerifyCode_Unknown(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.VerifyCode(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error for unknown code")
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected KindNotFound, got %v", apperror.KindOf(err))
	}
}

func TestVerifyCode_InactiveResident(t *testing.T) {
	svc, repo := newTestService()
	repo.Create(context.Background(), &Resident{Nom: "Durand", Prenom: "Paul", CodeAcces: "CD34", Actif: false})

	if _, err := svc.VerifyCode(context.Background(), "CD34"); apperror.KindOf(err) != apperror.KindNotFound {
		t.Error("inactive resident's code must not verify")
	}
}

func TestVerifyCode_Empty(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.VerifyCode(context.Background(), "  "); apperror.KindOf(err) != apperror.KindInvalidInput {
		t.Error("expected KindInvalidInput for blank code")
	}
}

func TestSync_CreateThenIdempotentUpdate(t *testing.T) {
	svc, repo := newTestService()
	uid := uuid.New()
	in := SyncInput{Nom: "Dupont", Prenom: "Jean", CodeAcces: "AB12", SyncUID: &uid}

	action, res, err := svc.Sync(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "created" {
		t.Errorf("expected created, got %s", action)
	}

	action, res2, err := svc.Sync(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "updated" {
		t.Errorf("expected updated on second run, got %s", action)
	}
	if res2.ID != res.ID {
		t.Error("second sync must not create a new row")
	}
	if len(repo.residents) != 1 {
		t.Errorf("expected 1 row, got %d", len(repo.residents))
	}
}

func TestSync_RenameWithUIDUpdatesInPlace(t *testing.T) {
	svc, repo := newTestService()
	uid := uuid.New()
	svc.Sync(context.Background(), SyncInput{Nom: "Dupont", Prenom: "Jean", SyncUID: &uid})

	action, _, err := svc.Sync(context.Background(), SyncInput{Nom: "Dupond", Prenom: "Jean", SyncUID: &uid})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "updated" {
		t.Errorf("rename with sync uid should update, got %s", action)
	}
	if len(repo.residents) != 1 {
		t.Errorf("expected 1 row after uid rename, got %d", len(repo.residents))
	}
}

// The legacy natural-key path duplicates on rename: without a stable uid the
// remote cannot tell a renamed resident from a new one.
func TestSync_RenameWithoutUIDDuplicates(t *testing.T) {
	svc, repo := newTestService()
	svc.Sync(context.Background(), SyncInput{Nom: "Dupont", Prenom: "Jean"})

	action, _, err := svc.Sync(context.Background(), SyncInput{Nom: "Dupond", Prenom: "Jean"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "created" {
		t.Errorf("rename without uid duplicates, got %s", action)
	}
	if len(repo.residents) != 2 {
		t.Errorf("expected 2 rows after legacy rename, got %d", len(repo.residents))
	}
}

func TestSync_MissingName(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.Sync(context.Background(), SyncInput{Nom: "", Prenom: "Jean"}); err == nil {
		t.Error("expected error for missing nom")
	}
}

func TestSoftDelete(t *testing.T) {
	svc, repo := newTestService()
	r := &Resident{Nom: "Dupont", Prenom: "Jean", Actif: true}
	repo.Create(context.Background(), r)

	if err := svc.SoftDelete(context.Background(), r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.residents[r.ID].Actif {
		t.Error("resident should be inactive after soft delete")
	}
	// Row still present: soft delete never destroys.
	if len(repo.residents) != 1 {
		t.Error("soft delete must not remove the row")
	}
}

func TestSoftDelete_Unknown(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.SoftDelete(context.Background(), 42); apperror.KindOf(err) != apperror.KindNotFound {
		t.Error("expected KindNotFound for unknown resident")
	}
}
