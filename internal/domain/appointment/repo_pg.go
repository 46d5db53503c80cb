package appointment

import (
	"context"
	"errors"
	"time"

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

// NewRepoPG returns the PostgreSQL-backed rendez-vous repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const rdvCols = `id, resident_id, famille_id, date_rdv, duree_minutes, statut,
	notes_avant, lien_jitsi, rappel_envoye, created_at, updated_at`

func scanRDV(row pgx.Row) (*RendezVous, error) {
	var rv RendezVous
	err := row.Scan(&rv.ID, &rv.ResidentID, &rv.FamilleID, &rv.DateRDV, &rv.DureeMinutes,
		&rv.Statut, &rv.NotesAvant, &rv.LienJitsi, &rv.RappelEnvoye, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.New(apperror.KindNotFound, "rendez-vous introuvable")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture rendez-vous", err)
	}
	return &rv, nil
}

func (r *repoPG) Create(ctx context.Context, rv *RendezVous) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO rendez_vous (resident_id, famille_id, date_rdv, duree_minutes,
			statut, notes_avant, lien_jitsi, rappel_envoye)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		rv.ResidentID, rv.FamilleID, rv.DateRDV, rv.DureeMinutes,
		rv.Statut, rv.NotesAvant, rv.LienJitsi, rv.RappelEnvoye).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "insertion rendez-vous", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*RendezVous, error) {
	return scanRDV(r.conn(ctx).QueryRow(ctx,
		`SELECT `+rdvCols+` FROM rendez_vous WHERE id = $1`, id))
}

func (r *repoPG) ListNonTerminalByFamily(ctx context.Context, familleID int64) ([]*RendezVous, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rdvCols+` FROM rendez_vous
		 WHERE famille_id = $1 AND statut = ANY($2)
		 ORDER BY date_rdv`, familleID, statutStrings(NonTerminalStatuts))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste rendez-vous famille", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListOccupied(ctx context.Context) ([]*RendezVous, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rdvCols+` FROM rendez_vous
		 WHERE statut = ANY($1)
		 ORDER BY date_rdv`, statutStrings(NonTerminalStatuts))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste créneaux occupés", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListDueForReminder(ctx context.Context, until time.Time) ([]*RendezVous, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rdvCols+` FROM rendez_vous
		 WHERE statut = ANY($1) AND NOT rappel_envoye
		   AND date_rdv > NOW() AND date_rdv <= $2
		 ORDER BY date_rdv`,
		[]string{string(StatutPlanifie), string(StatutConfirme)}, until)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "liste rappels à envoyer", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*RendezVous, error) {
	var items []*RendezVous
	for rows.Next() {
		rv, err := scanRDV(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "lecture rendez-vous", err)
	}
	return items, nil
}

func statutStrings(statuts []Statut) []string {
	out := make([]string, len(statuts))
	for i, s := range statuts {
		out[i] = string(s)
	}
	return out
}

func (r *repoPG) Update(ctx context.Context, rv *RendezVous) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE rendez_vous SET date_rdv=$2, duree_minutes=$3, statut=$4,
			notes_avant=$5, lien_jitsi=$6, rappel_envoye=$7, updated_at=NOW()
		WHERE id = $1`,
		rv.ID, rv.DateRDV, rv.DureeMinutes, rv.Statut,
		rv.NotesAvant, rv.LienJitsi, rv.RappelEnvoye)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "mise à jour rendez-vous", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "rendez-vous introuvable")
	}
	return nil
}

func (r *repoPG) HardDelete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM rendez_vous WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "suppression rendez-vous", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.KindNotFound, "rendez-vous introuvable")
	}
	return nil
}
