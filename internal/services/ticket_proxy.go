package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vet-portal/internal/config"
	"vet-portal/internal/metrics"
	"vet-portal/internal/models"
)

// InternalSecretHeader carries the shared secret between the portal and the gateway.
const InternalSecretHeader = "X-Internal-Secret"

// maxForwardedBody bounds the gateway error body relayed to the caller.
const maxForwardedBody = 1 << 20

var (
	// ErrTicketUnavailable is returned when the gateway cannot be reached.
	ErrTicketUnavailable = errors.New("ticket service unavailable")
	// ErrRedirectWithoutLocation is returned when the gateway redirects without a target.
	ErrRedirectWithoutLocation = errors.New("ticket service returned redirect without Location")
)

// AppointmentFinder looks up a single appointment.
type AppointmentFinder interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
}

// TicketResponse is the terminal answer of the proxy. Location is set when the
// gateway redirected to the rendered document; otherwise Status, ContentType
// and Body are the gateway's own response.
type TicketResponse struct {
	Location    string
	Status      int
	ContentType string
	Body        []byte
}

// Redirect reports whether the caller should be sent to Location.
func (r *TicketResponse) Redirect() bool {
	return r.Location != ""
}

// TicketProxy relays ticket requests of appointment owners to the internal
// ticket gateway. Exactly one gateway round trip is made per request.
type TicketProxy struct {
	cfg     config.TicketConfig
	repo    AppointmentFinder
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewTicketHTTPClient returns the client used to call the gateway. It never
// follows redirects: the gateway's redirect is the answer itself.
func NewTicketHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// NewTicketProxy creates a TicketProxy. A nil client gets NewTicketHTTPClient.
func NewTicketProxy(cfg config.TicketConfig, repo AppointmentFinder, client *http.Client, logger *slog.Logger, m *metrics.Metrics) *TicketProxy {
	if client == nil {
		client = NewTicketHTTPClient(cfg.Timeout)
	}
	return &TicketProxy{
		cfg:     cfg,
		repo:    repo,
		client:  client,
		logger:  logger,
		metrics: m,
	}
}

// Fetch resolves the ticket of appointment id for caller. Only the owner of the
// appointment may fetch it; staff have no bypass on this path.
func (p *TicketProxy) Fetch(ctx context.Context, caller models.Caller, id uuid.UUID) (*TicketResponse, error) {
	if !p.cfg.Configured() {
		p.metrics.RecordTicketProxy("not_configured")
		p.logger.Error("ticket request refused, TICKET_API_URL or TICKET_INTERNAL_SECRET missing",
			"appointment_id", id.String())
		return nil, models.ErrTicketNotConfigured
	}

	appt, err := p.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			p.metrics.RecordTicketProxy("not_found")
			return nil, err
		}
		p.metrics.RecordTicketProxy("error")
		return nil, errors.Wrap(err, "failed to load appointment")
	}
	if !caller.Owns(appt) {
		p.metrics.RecordTicketProxy("forbidden")
		p.logger.Warn("ticket request for foreign appointment",
			"security", true,
			"appointment_id", id.String(),
			"caller", caller.Subject,
		)
		return nil, models.ErrForbidden
	}

	target := strings.TrimRight(p.cfg.APIURL, "/") + "/ticket/" + id.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		p.metrics.RecordTicketProxy("error")
		return nil, errors.Wrap(err, "failed to build ticket request")
	}
	req.Header.Set(InternalSecretHeader, p.cfg.InternalSecret)

	start := time.Now()
	resp, err := p.client.Do(req)
	p.metrics.ObserveGatewayLatency(time.Since(start))
	if err != nil {
		p.metrics.RecordTicketProxy("unavailable")
		p.logger.Error("ticket gateway unreachable", "appointment_id", id.String(), "error", err.Error())
		return nil, ErrTicketUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusTemporaryRedirect {
		location := resp.Header.Get("Location")
		if location == "" {
			p.metrics.RecordTicketProxy("bad_gateway")
			p.logger.Error("ticket gateway redirect without Location",
				"appointment_id", id.String(), "status", resp.StatusCode)
			return nil, ErrRedirectWithoutLocation
		}
		p.metrics.RecordTicketProxy("redirect")
		p.logger.Info("ticket ready", "appointment_id", id.String())
		return &TicketResponse{Location: location, Status: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardedBody))
	if err != nil {
		p.metrics.RecordTicketProxy("unavailable")
		return nil, errors.Wrap(ErrTicketUnavailable, fmt.Sprintf("read gateway response: %v", err))
	}
	p.metrics.RecordTicketProxy("forwarded")
	p.logger.Warn("ticket gateway answered without redirect",
		"appointment_id", id.String(), "status", resp.StatusCode)
	return &TicketResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
