// internal/gateway/handler.go
package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"nlquery-gateway/internal/audit"
	qerrors "nlquery-gateway/internal/common/errors"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/common/metrics"
	"nlquery-gateway/internal/common/observability"
	"nlquery-gateway/internal/models"
	"nlquery-gateway/internal/notify"
	"nlquery-gateway/internal/orchestrator"
)

const maxRequestBody = 1 << 20

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuditSink records the outcome of one orchestration.
type AuditSink interface {
	Index(ctx context.Context, record *models.QueryAuditRecord) error
}

var _ AuditSink = (*audit.Indexer)(nil)

// Notifier fans a query event out to external channels.
type Notifier interface {
	Dispatch(ctx context.Context, n *models.QueryNotification)
}

var _ Notifier = (*notify.Dispatcher)(nil)

// Handler implements the gateway's request semantics over the orchestrator.
// Audit and notification writes are fire-and-forget.
type Handler struct {
	orchestrator *orchestrator.Orchestrator
	errWriter    *qerrors.HTTPWriter
	auditSink    AuditSink // optional
	notifier     Notifier  // optional
	obs          *observability.Observability
	pingers      map[string]Pinger
	logger       logger.Logger
}

func NewHandler(
	orch *orchestrator.Orchestrator,
	auditSink AuditSink,
	notifier Notifier,
	obs *observability.Observability,
	pingers map[string]Pinger,
	log logger.Logger,
) *Handler {
	return &Handler{
		orchestrator: orch,
		errWriter:    qerrors.NewHTTPWriter(log),
		auditSink:    auditSink,
		notifier:     notifier,
		obs:          obs,
		pingers:      pingers,
		logger:       log.With(map[string]interface{}{"component": "gateway_handler"}),
	}
}

// Query handles POST /api/v1/query.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.New().String()

	var req models.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.errWriter.WriteError(w, qerrors.NewValidationError("Invalid request body",
			"body: request body must be valid JSON"))
		return
	}

	resp, err := h.orchestrator.Run(r.Context(), &req)
	duration := time.Since(start)

	if err != nil {
		env := qerrors.EncodeError(err)
		h.finishQuery(requestID, &req, nil, string(env.Payload.Code), duration)
		h.errWriter.WriteEnvelope(w, env)
		return
	}

	h.finishQuery(requestID, &req, resp, "", duration)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

type createConversationResponse struct {
	ID int64 `json:"id"`
}

// CreateConversation handles POST /api/v1/conversations.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.errWriter.WriteError(w, qerrors.NewValidationError("Invalid request body",
			"body: request body must be valid JSON"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.errWriter.WriteError(w, qerrors.NewValidationError("Invalid request",
			"title: title is required"))
		return
	}

	id, err := h.orchestrator.NewConversation(r.Context(), strings.TrimSpace(req.Title))
	if err != nil {
		h.errWriter.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createConversationResponse{ID: id})
}

// Health handles GET /healthz. Any failing dependency flips the status to 503
// with a per-dependency breakdown.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.pingers))
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": map[int]string{http.StatusOK: "ok", http.StatusServiceUnavailable: "degraded"}[status],
		"checks": checks,
	})
}

// finishQuery records the orchestration outcome in the audit trail, the
// notification channels, and the otel metrics. Never blocks the response.
func (h *Handler) finishQuery(requestID string, req *models.QueryRequest, resp *models.QueryResponse, errorCode string, duration time.Duration) {
	outcome := "success"
	event := "query.completed"
	rowCount := 0
	sqlText := ""
	datasourceID := req.DatasourceID
	if resp != nil {
		rowCount = len(resp.Rows)
		sqlText = resp.SQL
		datasourceID = resp.DatasourceID
	}
	if errorCode != "" {
		outcome = "error"
		event = "query.failed"
	}

	if h.obs != nil {
		h.obs.RecordQuery(context.Background(), outcome)
		h.obs.RecordQueryDuration(context.Background(), duration, outcome)
	}

	record := &models.QueryAuditRecord{
		RequestID:    requestID,
		Question:     req.Question,
		SQL:          sqlText,
		DatasourceID: datasourceID,
		AIProviderID: req.AIProviderID,
		Outcome:      outcome,
		ErrorCode:    errorCode,
		DurationMs:   duration.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
	notification := &models.QueryNotification{
		ID:           requestID,
		Event:        event,
		Question:     req.Question,
		DatasourceID: datasourceID,
		ErrorCode:    errorCode,
		RowCount:     rowCount,
		Timestamp:    record.Timestamp,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if h.auditSink != nil {
			if err := h.auditSink.Index(ctx, record); err != nil {
				h.logger.Warn("audit write failed", map[string]interface{}{
					"requestId": requestID,
					"error":     err.Error(),
				})
			}
		}
		if h.notifier != nil {
			h.notifier.Dispatch(ctx, notification)
		}
	}()
}

// requireBearer rejects API requests whose Authorization header does not carry
// the configured static token.
func (h *Handler) requireBearer(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		candidate, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) != 1 {
			h.errWriter.WriteError(w, qerrors.New(qerrors.ErrCodeUnauthenticated, ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument tracks in-flight requests and logs each one.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		start := time.Now()
		next.ServeHTTP(w, r)

		if r.URL.Path != "/healthz" && r.URL.Path != "/metrics" {
			h.logger.Info("request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"durationMs": time.Since(start).Milliseconds(),
			})
		}
	})
}
