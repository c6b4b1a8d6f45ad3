// Package rest exposes the viewing availability REST API.
package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maisonhq/maison/internal/auth"
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/services/viewings/storage"
)

// Handler serves the availability routes for one store.
type Handler struct {
	store storage.SlotStore
}

// NewHandler creates an availability API handler backed by the given store.
func NewHandler(store storage.SlotStore) *Handler {
	return &Handler{store: store}
}

// Mux returns the route table. Listing a property's slots is public;
// creating and deleting slots requires a verified token.
func (h *Handler) Mux(authCfg auth.Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/availability", auth.Middleware(authCfg, http.HandlerFunc(h.createSlot)))
	mux.HandleFunc("GET /api/availability/property/{propertyID}", h.listSlots)
	mux.Handle("DELETE /api/availability/{slotID}", auth.Middleware(authCfg, http.HandlerFunc(h.deleteSlot)))
	return mux
}

// SlotPayload is the wire shape of one availability slot. Times are RFC 3339.
type SlotPayload struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	SellerID   string `json:"seller_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func toPayload(slot storage.Slot) SlotPayload {
	return SlotPayload{
		ID:         slot.ID,
		PropertyID: slot.PropertyID,
		SellerID:   slot.SellerID,
		Start:      slot.Start.Format(time.RFC3339),
		End:        slot.End.Format(time.RFC3339),
	}
}

type createSlotRequest struct {
	PropertyID string `json:"property_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (h *Handler) createSlot(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeAuthTokenMissing, "request is not authenticated"))
		return
	}
	var req createSlotRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid slot body", err))
		return
	}
	if strings.TrimSpace(req.PropertyID) == "" {
		httpapi.WriteError(w, apperrors.WithMetadata(
			apperrors.CodeFormFieldRequired,
			"field is required",
			map[string]string{"Field": "property_id"},
		))
		return
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Start))
	if err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeSlotTimeInvalid, "start must be an RFC 3339 timestamp", err))
		return
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(req.End))
	if err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeSlotTimeInvalid, "end must be an RFC 3339 timestamp", err))
		return
	}
	if !end.After(start) {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeSlotTimeInvalid, "end must be after start"))
		return
	}

	slot := storage.Slot{
		ID:         uuid.NewString(),
		PropertyID: strings.TrimSpace(req.PropertyID),
		SellerID:   identity.UserID,
		Start:      start.UTC(),
		End:        end.UTC(),
	}
	if err := h.store.CreateSlot(r.Context(), slot); err != nil {
		if errors.Is(err, storage.ErrOverlap) {
			httpapi.WriteError(w, apperrors.New(apperrors.CodeSlotOverlap, "slot overlaps an existing slot"))
			return
		}
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toPayload(slot))
}

// ListResponse is the wire shape of a property's availability.
type ListResponse struct {
	Slots []SlotPayload `json:"slots"`
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	propertyID := strings.TrimSpace(r.PathValue("propertyID"))
	slots, err := h.store.ListSlots(r.Context(), propertyID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	resp := ListResponse{Slots: make([]SlotPayload, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, toPayload(slot))
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteSlot(w http.ResponseWriter, r *http.Request) {
	slotID := strings.TrimSpace(r.PathValue("slotID"))
	if err := h.store.DeleteSlot(r.Context(), slotID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.WriteError(w, apperrors.New(apperrors.CodeNotFound, "slot not found"))
			return
		}
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
