// Package sync pushes the console's authoritative data to the remote portal
// API. One direction only, idempotent, and a dead remote must never corrupt
// the local store.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// Client is a thin JSON client for the remote portal API with a bounded
// timeout on every call.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client. timeout bounds each request end to end.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// postJSON posts payload to path and decodes the JSON response into out.
// Transport failures and timeouts come back as RemoteUnavailable so callers
// can tell them apart from remote-side rejections.
func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperror.Wrap(apperror.KindInvalidInput, "encodage de la requête", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperror.Wrap(apperror.KindInvalidInput, "construction de la requête", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Wrap(apperror.KindRemoteUnavailable,
			fmt.Sprintf("serveur distant injoignable (%s)", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperror.New(apperror.KindRemoteUnavailable,
			fmt.Sprintf("erreur distante %d sur %s", resp.StatusCode, path))
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperror.New(apperror.KindInvalidInput,
			fmt.Sprintf("requête refusée (%d) sur %s : %s", resp.StatusCode, path, strings.TrimSpace(string(raw))))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.Wrap(apperror.KindRemoteUnavailable, "réponse distante illisible", err)
		}
	}
	return nil
}
