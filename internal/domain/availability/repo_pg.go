package availability

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyny77/mely-api/internal/platform/apperror"
	"github.com/nyny77/mely-api/internal/platform/db"
)

// beginner covers both the pool and a per-request pooled connection.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed availability repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) beginner {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const creneauCols = `id, jour_semaine, heure_debut, heure_fin, type, actif, created_at, updated_at`

func scanCreneau(row pgx.Row) (*Creneau, error) {
	var c Creneau
	err := row.Scan(&c.ID, &c.JourSemaine, &c.HeureDebut, &c.HeureFin, &c.Type,
		&c.Actif, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.New(apperror.KindNotFound, "créneau introuvable")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture créneau", err)
	}
	return &c, nil
}

func (r *repoPG) ListActive(ctx context.Context) ([]*Creneau, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+creneauCols+` FROM disponibilites
		 WHERE actif ORDER BY jour_semaine, heure_debut`)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste créneaux", err)
	}
	defer rows.Close()

	var items []*Creneau
	for rows.Next() {
		c, err := scanCreneau(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture créneaux", err)
	}
	return items, nil
}

func (r *repoPG) ReplaceAll(ctx context.Context, slots []*Creneau) error {
	tx, err := r.conn(ctx).Begin(ctx)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "ouverture transaction créneaux", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM disponibilites`); err != nil {
		return apperror.Wrap(apperror.KindStore, "purge créneaux", err)
	}
	for _, c := range slots {
		err := tx.QueryRow(ctx, `
			INSERT INTO disponibilites (jour_semaine, heure_debut, heure_fin, type, actif)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id, created_at, updated_at`,
			c.JourSemaine, c.HeureDebut, c.HeureFin, c.Type, c.Actif).
			Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return apperror.Wrap(apperror.KindStore, "insertion créneau", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.Wrap(apperror.KindStore, "validation transaction créneaux", err)
	}
	return nil
}
