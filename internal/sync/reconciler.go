package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nyny77/mely-api/internal/local"
)

// Reconciler pushes the local store's residents and availability to the
// remote API.
type Reconciler struct {
	store  *local.Store
	client *Client
	log    zerolog.Logger
}

func NewReconciler(store *local.Store, client *Client, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, client: client, log: log}
}

// ResidentReport summarizes one resident-sync run.
type ResidentReport struct {
	Created int
	Updated int
}

type residentPayload struct {
	Nom       string  `json:"nom"`
	Prenom    string  `json:"prenom"`
	Chambre   *string `json:"chambre,omitempty"`
	CodeAcces string  `json:"code_acces"`
	SyncUID   *string `json:"sync_uid,omitempty"`
	Actif     bool    `json:"actif"`
}

type syncResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

// SyncResidents upserts every local resident on the remote, one call per
// resident. Deactivated rows are pushed too, with actif=false, so a console
// soft-delete stops portal bookings without a manual remote delete. Each row
// carries its sync uid so a renamed resident updates in place instead of
// duplicating. A remote failure aborts the run and is returned; the local
// store is never touched.
func (r *Reconciler) SyncResidents(ctx context.Context) (ResidentReport, error) {
	var report ResidentReport
	residents, err := r.store.ListResidents()
	if err != nil {
		return report, err
	}
	for i := range residents {
		res := &residents[i]
		payload := residentPayload{
			Nom:       res.Nom,
			Prenom:    res.Prenom,
			Chambre:   res.Chambre,
			CodeAcces: res.CodeAcces,
			Actif:     res.Actif,
		}
		if res.SyncUID != nil {
			uid := res.SyncUID.String()
			payload.SyncUID = &uid
		}
		var resp syncResponse
		if err := r.client.postJSON(ctx, "/api/residents/sync", payload, &resp); err != nil {
			r.log.Error().Err(err).Str("resident", res.Nom+" "+res.Prenom).Msg("resident sync aborted")
			return report, err
		}
		switch resp.Action {
		case "created":
			report.Created++
		case "updated":
			report.Updated++
		}
		r.log.Debug().Str("resident", res.Nom+" "+res.Prenom).Str("action", resp.Action).Msg("resident synced")
	}
	r.log.Info().Int("created", report.Created).Int("updated", report.Updated).Msg("resident sync done")
	return report, nil
}

type creneauPayload struct {
	JourSemaine int    `json:"jour_semaine"`
	HeureDebut  string `json:"heure_debut"`
	HeureFin    string `json:"heure_fin"`
	Type        string `json:"type"`
	Actif       bool   `json:"actif"`
}

// SyncAvailability pushes the full local active slot list; the remote
// replaces its table atomically in one transaction. Returns the number of
// slots pushed.
func (r *Reconciler) SyncAvailability(ctx context.Context) (int, error) {
	slots, err := r.store.ListActiveCreneaux()
	if err != nil {
		return 0, err
	}
	creneaux := make([]creneauPayload, 0, len(slots))
	for _, c := range slots {
		creneaux = append(creneaux, creneauPayload{
			JourSemaine: c.JourSemaine,
			HeureDebut:  c.HeureDebut,
			HeureFin:    c.HeureFin,
			Type:        c.Type,
			Actif:       c.Actif,
		})
	}
	payload := map[string]interface{}{"creneaux": creneaux}
	var resp struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	if err := r.client.postJSON(ctx, "/api/disponibilites/sync", payload, &resp); err != nil {
		r.log.Error().Err(err).Msg("availability sync aborted")
		return 0, err
	}
	r.log.Info().Int("count", resp.Count).Msg("availability sync done")
	return resp.Count, nil
}
