package family

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed family repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const familleCols = `id, resident_id, nom, prenom, lien_parente, email, telephone,
	password_hash, registration_status, actif, created_at, updated_at`

func scanFamille(row pgx.Row) (*Famille, error) {
	var f Famille
	err := row.Scan(&f.ID, &f.ResidentID, &f.Nom, &f.Prenom, &f.LienParente, &f.Email,
		&f.Telephone, &f.PasswordHash, &f.RegistrationStatus, &f.Actif, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.New(apperror.KindNotFound, "famille introuvable")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture famille", err)
	}
	return &f, nil
}

func (r *repoPG) Create(ctx context.Context, f *Famille) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO familles (resident_id, nom, prenom, lien_parente, email, telephone,
			password_hash, registration_status, actif)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		f.ResidentID, f.Nom, f.Prenom, f.LienParente, f.Email, f.Telephone,
		f.PasswordHash, f.RegistrationStatus, f.Actif).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion famille", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Famille, error) {
	return scanFamille(r.conn(ctx).QueryRow(ctx,
		`SELECT `+familleCols+` FROM familles WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Famille, error) {
	return scanFamille(r.conn(ctx).QueryRow(ctx,
		`SELECT `+familleCols+` FROM familles WHERE actif AND LOWER(email) = LOWER($1) ORDER BY id LIMIT 1`, email))
}

func (r *repoPG) ListByResident(ctx context.Context, residentID int64) ([]*Famille, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+familleCols+` FROM familles WHERE resident_id = $1 AND actif ORDER BY nom, prenom`, residentID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste familles", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListPending(ctx context.Context) ([]*Famille, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+familleCols+` FROM familles WHERE registration_status = $1 ORDER BY created_at`, RegistrationPending)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste inscriptions en attente", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Famille, error) {
	var items []*Famille
	for rows.Next() {
		f, err := scanFamille(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture familles", err)
	}
	return items, nil
}

func (r *repoPG) Update(ctx context.Context, f *Famille) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE familles SET nom=$2, prenom=$3, lien_parente=$4, email=$5, telephone=$6,
			password_hash=$7, registration_status=$8, actif=$9, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.Nom, f.Prenom, f.LienParente, f.Email, f.Telephone,
		f.PasswordHash, f.RegistrationStatus, f.Actif)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "mise à jour famille", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "famille introuvable")
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE familles SET actif = FALSE, updated_at = NOW() WHERE id = $1 AND actif`, id)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "désactivation famille", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "famille introuvable")
	}
	return nil
}
