// Package rest exposes the transaction progress REST API.
package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/maisonhq/maison/internal/auth"
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/services/progress/storage"
	"github.com/maisonhq/maison/internal/timeline"
)

// Handler serves the progress routes for one store.
type Handler struct {
	store storage.ProgressStore
}

// NewHandler creates a progress API handler backed by the given store.
func NewHandler(store storage.ProgressStore) *Handler {
	return &Handler{store: store}
}

// Mux returns the route table with bearer auth applied to every route.
func (h *Handler) Mux(authCfg auth.Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{userID}/transactions/{transactionID}/progress", h.getProgress)
	mux.HandleFunc("PUT /api/users/{userID}/transactions/{transactionID}/progress", h.putProgress)
	mux.HandleFunc("POST /api/users/{userID}/transactions/{transactionID}/progress/confirm", h.confirmStep)
	mux.HandleFunc("GET /api/users/{userID}/transactions/{transactionID}/timeline", h.getTimeline)
	return auth.Middleware(authCfg, mux)
}

// pathIdentity validates the path identifiers against the verified token.
// The token subject must match the userID segment so one party can never
// read or write another party's record.
func pathIdentity(r *http.Request) (auth.Identity, string, string, error) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, "", "", apperrors.New(apperrors.CodeAuthTokenMissing, "request is not authenticated")
	}
	userID := strings.TrimSpace(r.PathValue("userID"))
	transactionID := strings.TrimSpace(r.PathValue("transactionID"))
	if userID == "" {
		return auth.Identity{}, "", "", apperrors.New(apperrors.CodeProgressUserIDRequired, "user id is required")
	}
	if transactionID == "" {
		return auth.Identity{}, "", "", apperrors.New(apperrors.CodeProgressTransactionIDRequired, "transaction id is required")
	}
	if identity.UserID != userID {
		return auth.Identity{}, "", "", apperrors.WithMetadata(
			apperrors.CodeAuthUserMismatch,
			"token does not grant access to this user's progress",
			map[string]string{"UserID": userID},
		)
	}
	return identity, userID, transactionID, nil
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	_, userID, transactionID, err := pathIdentity(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	record, err := h.store.GetProgress(r.Context(), userID, transactionID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) putProgress(w http.ResponseWriter, r *http.Request) {
	identity, userID, transactionID, err := pathIdentity(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	var update progress.Update
	if err := httpapi.DecodeJSON(r, &update); err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid progress update body", err))
		return
	}
	if err := update.CheckOwnership(identity.Role); err != nil {
		httpapi.WriteError(w, err)
		return
	}
	record, err := h.store.ApplyUpdate(r.Context(), userID, transactionID, update)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, record)
}

type confirmRequest struct {
	Step string `json:"step"`
}

func (h *Handler) confirmStep(w http.ResponseWriter, r *http.Request) {
	identity, userID, transactionID, err := pathIdentity(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	var req confirmRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid confirm body", err))
		return
	}
	update, err := progress.ConfirmUpdate(identity.Role, req.Step)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	record, err := h.store.ApplyUpdate(r.Context(), userID, transactionID, update)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, record)
}

// TimelineResponse is the wire shape of the derived timeline.
type TimelineResponse struct {
	Role   progress.Role   `json:"role"`
	Buyer  []timeline.Step `json:"buyer"`
	Seller []timeline.Step `json:"seller"`
	Rows   []TimelineRow   `json:"rows"`
}

// TimelineRow is one rendered row with the shared dot status and whether
// the viewer's own step opens its form.
type TimelineRow struct {
	Buyer     timeline.Step   `json:"buyer"`
	Seller    timeline.Step   `json:"seller"`
	DotStatus timeline.Status `json:"dot_status"`
	CanOpen   bool            `json:"can_open"`
}

func (h *Handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	identity, userID, transactionID, err := pathIdentity(r)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	role := identity.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err = progress.ParseRole(raw)
		if err != nil {
			httpapi.WriteError(w, err)
			return
		}
	}
	input := timeline.Input{OfferAccepted: true}
	if raw := strings.TrimSpace(r.URL.Query().Get("offer_accepted")); raw != "" {
		accepted, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid offer_accepted value", parseErr))
			return
		}
		input.OfferAccepted = accepted
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("offer_document_attached")); raw != "" {
		attached, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid offer_document_attached value", parseErr))
			return
		}
		input.OfferDocumentAttached = attached
	}

	record, err := h.store.GetProgress(r.Context(), userID, transactionID)
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}

	buyer, seller := timeline.DeriveTracks(record, input)
	own := buyer
	if role == progress.RoleSeller {
		own = seller
	}
	rows := timeline.Rows(buyer, seller)
	payload := TimelineResponse{
		Role:   role,
		Buyer:  buyer,
		Seller: seller,
		Rows:   make([]TimelineRow, 0, len(rows)),
	}
	for i, row := range rows {
		payload.Rows = append(payload.Rows, TimelineRow{
			Buyer:     row.Buyer,
			Seller:    row.Seller,
			DotStatus: row.DotStatus(),
			CanOpen:   timeline.CanClick(own, i),
		})
	}
	httpapi.WriteJSON(w, http.StatusOK, payload)
}
