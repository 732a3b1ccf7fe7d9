package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plantops/alertfeed/pkg/alert"
	"github.com/plantops/alertfeed/pkg/logger"
	"github.com/plantops/alertfeed/pkg/push"
)

// OperatorHeader identifies the calling operator. Filling it correctly is
// the job of the authenticating proxy in front of this service.
const OperatorHeader = "X-Operator-ID"

// Handler serves the operator-facing notification API.
type Handler struct {
	store    alert.Store
	channel  push.Channel
	pageSize int
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPageSize sets the pagination page size.
func WithPageSize(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.pageSize = n
		}
	}
}

// WithHandlerLogger sets the handler's logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the API handler. The channel may be nil, which
// disables the event stream endpoint.
func NewHandler(store alert.Store, channel push.Channel, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:    store,
		channel:  channel,
		pageSize: alert.DefaultPageLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts the API routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/notifications", h.list)
	r.Get("/notifications/stream", h.stream)
	r.Get("/notifications/unread-count", h.unreadCount)
	r.Post("/notifications/read-all", h.markAllRead)
	r.Post("/notifications/{id}/read", h.markRead)
	return r
}

func (h *Handler) operator(r *http.Request) string {
	return r.Header.Get(OperatorHeader)
}

// listQuery builds the store query from request parameters. Unknown scope
// or filter values fall back to the widest view rather than erroring; the
// cursor still guards itself against scope mismatch.
func (h *Handler) listQuery(r *http.Request) alert.ListQuery {
	q := alert.ListQuery{
		Scope:   alert.Scope(r.URL.Query().Get("scope")),
		Filter:  alert.Filter(r.URL.Query().Get("filter")),
		Cursor:  alert.Cursor(r.URL.Query().Get("cursor")),
		OwnerID: h.operator(r),
		Limit:   h.pageSize,
	}
	if q.Scope != alert.ScopeMine {
		q.Scope = alert.ScopeAll
	}
	switch q.Filter {
	case alert.FilterUnread, alert.FilterRead:
	default:
		q.Filter = alert.FilterAny
	}
	return q
}

type pageResponse struct {
	Items      []alert.Notification `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
	HasMore    bool                 `json:"has_more"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.store.List(r.Context(), h.listQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, pageResponse{
		Items:      page.Items,
		NextCursor: string(page.NextCursor),
		HasMore:    page.HasMore,
	})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountUnread(r.Context(), h.operator(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.MarkRead(r.Context(), h.operator(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllRead(r.Context(), h.operator(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stream bridges the push channel onto server-sent events. The connection
// carries only notifications broadcast after it opened; clients reconcile
// reconnect gaps through the paginated endpoint.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	if h.channel == nil {
		http.Error(w, "event stream disabled", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.channel.Subscribe(r.Context())
	defer func() { _ = sub.Close() }()

	for n := range sub.Receive(r.Context()) {
		data, err := json.Marshal(n)
		if err != nil {
			h.logger.LogAttrs(r.Context(), slog.LevelWarn, "skipping unencodable notification",
				logger.Component("httpapi"),
				logger.NotificationID(n.ID),
				logger.Error(err),
			)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.LogAttrs(r.Context(), slog.LevelWarn, "response encoding failed",
			logger.Component("httpapi"),
			logger.Error(err),
		)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, alert.ErrCursorInvalid) || errors.Is(err, alert.ErrCursorScope) {
		status = http.StatusBadRequest
	}
	h.logger.LogAttrs(r.Context(), slog.LevelWarn, "request failed",
		logger.Component("httpapi"),
		logger.Error(err),
	)
	http.Error(w, err.Error(), status)
}
