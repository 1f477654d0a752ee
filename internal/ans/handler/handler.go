// Package handler exposes the registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ans/internal/ans/events"
	"ans/internal/ans/names"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/httputil"
	"ans/pkg/requestcontext"
)

// Registry is the façade the handler drives.
type Registry interface {
	Owner() domain.Address
	StorageAddress(ctx context.Context) (domain.Address, error)
	StorageOwner(ctx context.Context) (domain.Address, error)
	SetStorageAddress(ctx context.Context, caller, addr domain.Address) error
	AssignName(ctx context.Context, caller domain.Address, name string) error
	ResolveName(ctx context.Context, name string) (domain.Address, error)
	ResolveAddress(ctx context.Context, addr domain.Address) (string, error)
	TransferStorageOwnership(ctx context.Context, caller, newOwner domain.Address) error
	RenounceStorageOwnership(ctx context.Context, caller domain.Address) error
}

// Storage is the storage component's own surface. Its caller is whoever
// holds storage ownership, which starts as the registry.
type Storage interface {
	Address() domain.Address
	Owner(ctx context.Context) (domain.Address, error)
	AssignName(ctx context.Context, caller, addr domain.Address, name string) error
	ResolveName(ctx context.Context, name string) (domain.Address, error)
	ResolveAddress(ctx context.Context, addr domain.Address) (string, error)
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error
	RenounceOwnership(ctx context.Context, caller domain.Address) error
}

// EventSource feeds the SSE endpoint.
type EventSource interface {
	Subscribe(buffer int) (<-chan events.NameAssigned, func())
}

const (
	sseBuffer    = 64
	sseHeartbeat = 25 * time.Second
)

// Handler wires the HTTP API to the registry.
type Handler struct {
	registry    Registry
	storage     Storage
	events      EventSource
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithStorage mounts the /v1/storage routes over st.
func WithStorage(st Storage) Option {
	return func(h *Handler) {
		h.storage = st
	}
}

// New constructs the handler. requireAuth guards the mutating routes and may
// be nil when the caller is placed in the context by other means.
func New(registry Registry, source EventSource, logger *slog.Logger, requireAuth func(http.Handler) http.Handler, opts ...Option) *Handler {
	h := &Handler{
		registry:    registry,
		events:      source,
		logger:      logger,
		requireAuth: requireAuth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register mounts the /v1 routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/names", h.handleResolveName)
		r.Get("/names/", h.handleResolveName)
		r.Get("/names/{name}", h.handleResolveName)
		r.Get("/addresses/{address}", h.handleResolveAddress)
		r.Get("/owner", h.handleOwner)
		if h.events != nil {
			r.Get("/events", h.handleEvents)
		}

		r.Group(func(r chi.Router) {
			if h.requireAuth != nil {
				r.Use(h.requireAuth)
			}
			r.Post("/names", h.handleAssignName)
			r.Put("/admin/storage", h.handleSetStorage)
			r.Put("/admin/storage/owner", h.handleTransferStorageOwnership)
			r.Delete("/admin/storage/owner", h.handleRenounceStorageOwnership)
		})

		if h.storage != nil {
			r.Route("/storage", h.registerStorage)
		}
	})
}

// nameParam reads the name from the path, or from ?name= so the empty name
// is addressable.
func nameParam(r *http.Request) string {
	if name := chi.URLParam(r, "name"); name != "" {
		return name
	}
	return r.URL.Query().Get("name")
}

func (h *Handler) handleResolveName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := names.Normalize(nameParam(r))

	addr, err := h.registry.ResolveName(ctx, name)
	if err != nil {
		h.fail(ctx, w, "resolve name", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NameResponse{
		Name:    name,
		Address: addr,
		Bound:   !addr.IsZero(),
	})
}

func (h *Handler) handleResolveAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	name, err := h.registry.ResolveAddress(ctx, addr)
	if err != nil {
		h.fail(ctx, w, "resolve address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AddressResponse{
		Address: addr,
		Name:    name,
		Bound:   name != "",
	})
}

func (h *Handler) handleOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storageAddr, err := h.registry.StorageAddress(ctx)
	if err != nil {
		h.fail(ctx, w, "read storage address", err)
		return
	}
	storageOwner, err := h.registry.StorageOwner(ctx)
	if err != nil {
		h.fail(ctx, w, "read storage owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OwnerResponse{
		Owner:          h.registry.Owner(),
		StorageAddress: storageAddr,
		StorageOwner:   storageOwner,
	})
}

func (h *Handler) handleAssignName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignNameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.registry.AssignName(ctx, caller, req.Name); err != nil {
		h.fail(ctx, w, "assign name", err)
		return
	}
	h.logger.InfoContext(ctx, "name assigned",
		"name", names.Normalize(req.Name),
		"address", caller.Hex(),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, NameResponse{
		Name:    names.Normalize(req.Name),
		Address: caller,
		Bound:   true,
	})
}

func (h *Handler) handleSetStorage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetStorageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetStorageAddress(ctx, caller, req.parsedAddress); err != nil {
		h.fail(ctx, w, "set storage address", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTransferStorageOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferOwnershipRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.TransferStorageOwnership(ctx, caller, req.parsedNewOwner); err != nil {
		h.fail(ctx, w, "transfer storage ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenounceStorageOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.registry.RenounceStorageOwnership(ctx, caller); err != nil {
		h.fail(ctx, w, "renounce storage ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams NameAssigned events as server-sent events until the
// client disconnects.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	sub, cancel := h.events.Subscribe(sseBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream not flushable", "error", err)
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, open := <-sub:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: name_assigned\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Address, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return domain.Address{}, false
	}
	return caller, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		h.logger.ErrorContext(ctx, op+" failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.DebugContext(ctx, op+" rejected",
			"code", code,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
