package local

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nyny77/mely-api/internal/domain/appointment"
	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// Store wraps the console's sqlite database.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the sqlite file at path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Resident{}, &Famille{}, &RendezVous{}, &Creneau{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &Store{db: db}, nil
}

// -- Residents --

// CreateResident inserts a resident, stamping a sync uid so later renames
// reconcile as updates on the remote side.
func (s *Store) CreateResident(r *Resident) error {
	if r.SyncUID == nil {
		uid := uuid.New()
		r.SyncUID = &uid
	}
	if err := s.db.Create(r).Error; err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion résident", err)
	}
	return nil
}

func (s *Store) GetResident(id int64) (*Resident, error) {
	var r Resident
	if err := s.db.First(&r, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
		}
		return nil, apperror.Wrap(apperror.KindStore, "lecture résident", err)
	}
	return &r, nil
}

func (s *Store) ListActiveResidents() ([]Resident, error) {
	var items []Resident
	if err := s.db.Where("actif = ?", true).Order("nom, prenom").Find(&items).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste résidents", err)
	}
	return items, nil
}

// ListResidents returns every resident, deactivated ones included. The
// reconciler needs the full set so a console deactivation reaches the remote.
func (s *Store) ListResidents() ([]Resident, error) {
	var items []Resident
	if err := s.db.Order("nom, prenom").Find(&items).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste résidents", err)
	}
	return items, nil
}

func (s *Store) UpdateResident(r *Resident) error {
	if err := s.db.Save(r).Error; err != nil {
		return apperror.Wrap(apperror.KindStore, "mise à jour résident", err)
	}
	return nil
}

// HardDeleteResident removes the resident and cascades to its families and
// rendez-vous in one transaction. This is the console-only destructive path;
// the portal API only ever soft-deletes.
func (s *Store) HardDeleteResident(id int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.First(&Resident{}, id)
		if res.Error == gorm.ErrRecordNotFound {
			return apperror.New(apperror.KindNotFound, "résident introuvable")
		}
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("resident_id = ?", id).Delete(&RendezVous{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resident_id = ?", id).Delete(&Famille{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Resident{}, id).Error
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		return apperror.Wrap(apperror.KindStore, "suppression résident", err)
	}
	return nil
}

// -- Familles --

func (s *Store) CreateFamille(f *Famille) error {
	if err := s.db.Create(f).Error; err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion famille", err)
	}
	return nil
}

func (s *Store) ListFamillesByResident(residentID int64) ([]Famille, error) {
	var items []Famille
	if err := s.db.Where("resident_id = ?", residentID).Find(&items).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste familles", err)
	}
	return items, nil
}

// -- Rendez-vous --

func (s *Store) CreateRendezVous(rv *RendezVous) error {
	if err := s.db.Create(rv).Error; err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion rendez-vous", err)
	}
	return nil
}

func (s *Store) ListRendezVousBetween(from, to time.Time) ([]RendezVous, error) {
	var items []RendezVous
	err := s.db.Where("date_rdv >= ? AND date_rdv < ?", from, to).
		Order("date_rdv").Find(&items).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste rendez-vous", err)
	}
	return items, nil
}

// -- Créneaux --

func (s *Store) ListActiveCreneaux() ([]Creneau, error) {
	var items []Creneau
	err := s.db.Where("actif = ?", true).
		Order("jour_semaine, heure_debut").Find(&items).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste créneaux", err)
	}
	return items, nil
}

func (s *Store) SaveCreneau(c *Creneau) error {
	if err := s.db.Save(c).Error; err != nil {
		return apperror.Wrap(apperror.KindStore, "enregistrement créneau", err)
	}
	return nil
}

// PendingCounts feeds the console badge: registrations awaiting approval and
// appointment requests awaiting a decision.
type PendingCounts struct {
	Inscriptions int64
	RendezVous   int64
}

func (s *Store) CountPending() (PendingCounts, error) {
	var out PendingCounts
	if err := s.db.Model(&Famille{}).
		Where("registration_status = ?", "pending").Count(&out.Inscriptions).Error; err != nil {
		return out, apperror.Wrap(apperror.KindStore, "comptage inscriptions", err)
	}
	if err := s.db.Model(&RendezVous{}).
		Where("statut = ?", string(appointment.StatutEnAttente)).Count(&out.RendezVous).Error; err != nil {
		return out, apperror.Wrap(apperror.KindStore, "comptage demandes", err)
	}
	return out, nil
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
