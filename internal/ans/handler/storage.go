package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ans/pkg/domain"
	"ans/pkg/platform/httputil"
	"ans/pkg/requestcontext"
)

// registerStorage mounts the storage component's routes. Writes act as the
// authenticated caller, so only the current storage owner succeeds.
func (h *Handler) registerStorage(r chi.Router) {
	r.Get("/owner", h.handleStorageOwner)
	r.Get("/names", h.handleStorageResolveName)
	r.Get("/names/", h.handleStorageResolveName)
	r.Get("/names/{name}", h.handleStorageResolveName)
	r.Get("/addresses/{address}", h.handleStorageResolveAddress)

	r.Group(func(r chi.Router) {
		if h.requireAuth != nil {
			r.Use(h.requireAuth)
		}
		r.Post("/names", h.handleStorageAssignName)
		r.Put("/owner", h.handleStorageTransferOwnership)
		r.Delete("/owner", h.handleStorageRenounceOwnership)
	})
}

func (h *Handler) handleStorageOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := h.storage.Owner(ctx)
	if err != nil {
		h.fail(ctx, w, "read storage owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StorageResponse{
		Address: h.storage.Address(),
		Owner:   owner,
	})
}

// handleStorageResolveName looks the name up exactly as stored; storage does
// not normalize.
func (h *Handler) handleStorageResolveName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := nameParam(r)

	addr, err := h.storage.ResolveName(ctx, name)
	if err != nil {
		h.fail(ctx, w, "storage resolve name", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NameResponse{
		Name:    name,
		Address: addr,
		Bound:   !addr.IsZero(),
	})
}

func (h *Handler) handleStorageResolveAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	name, err := h.storage.ResolveAddress(ctx, addr)
	if err != nil {
		h.fail(ctx, w, "storage resolve address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AddressResponse{
		Address: addr,
		Name:    name,
		Bound:   name != "",
	})
}

func (h *Handler) handleStorageAssignName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StorageAssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.storage.AssignName(ctx, caller, req.parsedAddress, req.Name); err != nil {
		h.fail(ctx, w, "storage assign name", err)
		return
	}
	h.logger.InfoContext(ctx, "name written to storage",
		"name", req.Name,
		"address", req.parsedAddress.Hex(),
		"caller", caller.Hex(),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, NameResponse{
		Name:    req.Name,
		Address: req.parsedAddress,
		Bound:   true,
	})
}

func (h *Handler) handleStorageTransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferOwnershipRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.storage.TransferOwnership(ctx, caller, req.parsedNewOwner); err != nil {
		h.fail(ctx, w, "storage transfer ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStorageRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.storage.RenounceOwnership(ctx, caller); err != nil {
		h.fail(ctx, w, "storage renounce ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
