// Package sheets talks to the Apps Script web app that mirrors the roster
// into a spreadsheet for backup. The web app wraps payloads in a
// success/data/error envelope; failures are classified so callers can decide
// whether a retry makes sense.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	appErrors "github.com/plusiam/sisu/pkg/errors"
)

// RosterRow is one teacher row as stored in the backing sheet.
type RosterRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Grade       *int     `json:"grade,omitempty"`
	ClassNumber *int     `json:"classNumber,omitempty"`
	Grades      []int    `json:"grades,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	UpdatedAt   int64    `json:"updatedAt"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client is an HTTP client for the sheet web app.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient builds a sheet client. Timeout defaults to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch pulls all roster rows from the sheet.
func (c *Client) Fetch(ctx context.Context) ([]RosterRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSyncUnknown.Code, appErrors.ErrSyncUnknown.Status, appErrors.ErrSyncUnknown.Message)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []RosterRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSyncValidation.Code, appErrors.ErrSyncValidation.Status, "sheet payload is not a roster list")
	}
	for _, row := range rows {
		if row.ID == "" || row.Name == "" {
			return nil, appErrors.Clone(appErrors.ErrSyncValidation, "sheet roster row missing id or name")
		}
	}
	return rows, nil
}

// Push replaces the sheet contents with the provided roster rows.
func (c *Client) Push(ctx context.Context, rows []RosterRow) error {
	body, err := json.Marshal(map[string]interface{}{"rows": rows})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSyncUnknown.Code, appErrors.ErrSyncUnknown.Status, appErrors.ErrSyncUnknown.Message)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrSyncUnknown.Code, appErrors.ErrSyncUnknown.Status, appErrors.ErrSyncUnknown.Message)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("sheet backend returned HTTP %d", resp.StatusCode)
		return nil, appErrors.Clone(appErrors.ErrSyncServer, msg)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSyncValidation.Code, appErrors.ErrSyncValidation.Status, "sheet response is not valid JSON")
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = appErrors.ErrSyncServer.Message
		}
		return nil, appErrors.Clone(appErrors.ErrSyncServer, msg)
	}
	return env.Data, nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return appErrors.Wrap(err, appErrors.ErrSyncTimeout.Code, appErrors.ErrSyncTimeout.Status, appErrors.ErrSyncTimeout.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrSyncTimeout.Code, appErrors.ErrSyncTimeout.Status, appErrors.ErrSyncTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrSyncNetwork.Code, appErrors.ErrSyncNetwork.Status, appErrors.ErrSyncNetwork.Message)
}
