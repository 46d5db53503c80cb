package family

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Registration statuses. A pending family has registered on the portal and
// waits for staff approval; this is distinct from the active flag, which
// staff may clear to disable an approved account.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// Famille maps to the familles table.
type Famille struct {
	ID                 int64     `db:"id" json:"id"`
	ResidentID         int64     `db:"resident_id" json:"resident_id"`
	Nom                string    `db:"nom" json:"nom"`
	Prenom             string    `db:"prenom" json:"prenom"`
	LienParente        *string   `db:"lien_parente" json:"lien_parente,omitempty"`
	Email              string    `db:"email" json:"email"`
	Telephone          *string   `db:"telephone" json:"telephone,omitempty"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	RegistrationStatus string    `db:"registration_status" json:"registration_status"`
	Actif              bool      `db:"actif" json:"actif"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// CanLogIn reports whether the account is approved and enabled.
func (f *Famille) CanLogIn() bool {
	return f.Actif && f.RegistrationStatus == RegistrationApproved
}

// Public returns the family fields exposed to the portal.
func (f *Famille) Public() map[string]interface{} {
	out := map[string]interface{}{
		"id":     f.ID,
		"nom":    f.Nom,
		"prenom": f.Prenom,
		"email":  f.Email,
	}
	if f.LienParente != nil {
		out["lien_parente"] = *f.LienParente
	}
	return out
}

// HashPassword derives a bcrypt hash for storage. Only the hash is ever
// persisted.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext attempt against the stored hash.
func VerifyPassword(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
