package resident

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

// NewRepoPG returns the PostgreSQL-backed resident repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const residentCols = `id, nom, prenom, chambre, code_acces, sync_uid, actif, created_at, updated_at`

func scanResident(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(&res.ID, &res.Nom, &res.Prenom, &res.Chambre, &res.CodeAcces,
		&res.SyncUID, &res.Actif, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture résident", err)
	}
	return &res, nil
}

func (r *repoPG) Create(ctx context.Context, res *Resident) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO residents (nom, prenom, chambre, code_acces, sync_uid, actif)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		res.Nom, res.Prenom, res.Chambre, res.CodeAcces, res.SyncUID, res.Actif).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion résident", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Resident, error) {
	return scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Resident, error) {
	return scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE actif AND LOWER(code_acces) = LOWER($1)`, code))
}

func (r *repoPG) FindBySyncUID(ctx context.Context, uid uuid.UUID) (*Resident, error) {
	return scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE sync_uid = $1`, uid))
}

func (r *repoPG) FindByName(ctx context.Context, nom, prenom string) (*Resident, error) {
	return scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents WHERE nom = $1 AND prenom = $2 ORDER BY id LIMIT 1`, nom, prenom))
}

func (r *repoPG) ListActive(ctx context.Context, limit, offset int) ([]*Resident, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM residents WHERE actif`).Scan(&total); err != nil {
		return nil, 0, apperror.Wrap(apperror.KindStore, "comptage résidents", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+residentCols+` FROM residents WHERE actif ORDER BY nom, prenom LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.KindStore, "liste résidents", err)
	}
	defer rows.Close()
	var items []*Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Wrap(apperror.KindStore, "liste résidents", err)
	}
	return items, total, nil
}

func (r *repoPG) Update(ctx context.Context, res *Resident) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE residents SET nom=$2, prenom=$3, chambre=$4, code_acces=$5, sync_uid=$6, actif=$7, updated_at=NOW()
		WHERE id = $1`,
		res.ID, res.Nom, res.Prenom, res.Chambre, res.CodeAcces, res.SyncUID, res.Actif)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "mise à jour résident", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE residents SET actif = FALSE, updated_at = NOW() WHERE id = $1 AND actif`, id)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "désactivation résident", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "résident introuvable")
	}
	return nil
}
