package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vet-portal/internal/models"
	"vet-portal/internal/services"
)

// PortalClient reads ticket payloads from the portal's internal endpoint.
type PortalClient struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewPortalClient creates a PortalClient for the portal at baseURL.
func NewPortalClient(baseURL, secret string, timeout time.Duration) *PortalClient {
	return &PortalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Payload fetches the ticket payload of appointment id. Portal 404 and 403
// answers map to models.ErrNotFound and models.ErrForbidden.
func (p *PortalClient) Payload(ctx context.Context, id uuid.UUID) (*models.TicketPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/internal/ticket/"+id.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build portal request")
	}
	req.Header.Set(services.InternalSecretHeader, p.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "portal unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, models.ErrNotFound
	case http.StatusForbidden:
		return nil, models.ErrForbidden
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("portal answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload models.TicketPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode ticket payload")
	}
	return &payload, nil
}
