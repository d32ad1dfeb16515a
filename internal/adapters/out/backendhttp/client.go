// Package backendhttp implements the StatusBackend port against the central
// marketplace backend's REST API.
package backendhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"parceltrack/internal/core/domain/model/delivery"
	"parceltrack/internal/core/domain/model/kernel"
	"parceltrack/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

// Client talks to the backend's delivery-request status endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. httpClient may be nil; a default with a
// request timeout is used then.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// statusBody is the wire shape of the backend's status resource.
type statusBody struct {
	Status string `json:"status"`
}

// PushStatus reports a transition to the backend. A 409 response carries the
// backend's current status and is surfaced as an errs.ConflictError so the
// record store can reconcile.
func (c *Client) PushStatus(ctx context.Context, id kernel.UUID, status delivery.Status) error {
	payload, err := json.Marshal(statusBody{Status: status.String()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.statusURL(id), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push status to backend: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return errs.NewObjectNotFoundError("delivery", id.String())
	case http.StatusConflict:
		remote := c.remoteStatus(resp.Body)
		return errs.NewConflictError("status", status.String(), remote)
	default:
		return fmt.Errorf("push status to backend: unexpected response %d", resp.StatusCode)
	}
}

// FetchStatus retrieves the backend's authoritative status for a delivery.
func (c *Client) FetchStatus(ctx context.Context, id kernel.UUID) (delivery.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL(id), nil)
	if err != nil {
		return delivery.StatusUnknown, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return delivery.StatusUnknown, fmt.Errorf("fetch status from backend: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return delivery.StatusUnknown, errs.NewObjectNotFoundError("delivery", id.String())
	default:
		return delivery.StatusUnknown,
			fmt.Errorf("fetch status from backend: unexpected response %d", resp.StatusCode)
	}

	var body statusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return delivery.StatusUnknown, fmt.Errorf("decode backend status: %w", err)
	}

	status, err := delivery.StatusFromString(body.Status)
	if err != nil {
		return delivery.StatusUnknown, fmt.Errorf("backend returned unknown status %q: %w", body.Status, err)
	}
	return status, nil
}

func (c *Client) statusURL(id kernel.UUID) string {
	return fmt.Sprintf("%s/delivery/requests/%s/status", c.baseURL, id.String())
}

// remoteStatus extracts the backend's status from a conflict response body,
// falling back to "unknown" when the body is not parseable.
func (c *Client) remoteStatus(body io.Reader) string {
	var parsed statusBody
	if err := json.NewDecoder(body).Decode(&parsed); err != nil || parsed.Status == "" {
		return delivery.StatusUnknown.String()
	}
	return parsed.Status
}
