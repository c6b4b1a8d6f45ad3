// Package rest exposes the property listing REST API.
package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maisonhq/maison/internal/auth"
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/services/listing/storage"
)

// defaultPageSize bounds unpaginated list requests.
const defaultPageSize = 20

// maxPageSize caps the page size a client may request.
const maxPageSize = 100

// Handler serves the listing routes for one store.
type Handler struct {
	store storage.ListingStore
	now   func() time.Time
}

// NewHandler creates a listing API handler backed by the given store.
func NewHandler(store storage.ListingStore) *Handler {
	return &Handler{store: store, now: time.Now}
}

// Mux returns the route table. Reads are public; creating a listing
// requires a verified seller token.
func (h *Handler) Mux(authCfg auth.Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/listings", auth.Middleware(authCfg, http.HandlerFunc(h.createListing)))
	mux.HandleFunc("GET /api/listings/{id}", h.getListing)
	mux.HandleFunc("GET /api/listings", h.listListings)
	return mux
}

// ListingPayload is the wire shape of one listing.
type ListingPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	Postcode    string `json:"postcode"`
	SellerID    string `json:"seller_id"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func toPayload(listing storage.Listing) ListingPayload {
	return ListingPayload{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Bedrooms:    listing.Bedrooms,
		Bathrooms:   listing.Bathrooms,
		Postcode:    listing.Postcode,
		SellerID:    listing.SellerID,
		Status:      listing.Status,
		CreatedAt:   listing.CreatedAt.UnixMilli(),
		UpdatedAt:   listing.UpdatedAt.UnixMilli(),
	}
}

type createListingRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Bedrooms    int    `json:"bedrooms,omitempty"`
	Bathrooms   int    `json:"bathrooms,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (h *Handler) createListing(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeAuthTokenMissing, "request is not authenticated"))
		return
	}
	var req createListingRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, apperrors.Wrap(apperrors.CodeBadRequest, "invalid listing body", err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeListingTitleEmpty, "title is required"))
		return
	}
	if req.Price <= 0 {
		httpapi.WriteError(w, apperrors.New(apperrors.CodeListingPriceInvalid, "price must be greater than zero"))
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := h.now().UTC()
	listing := storage.Listing{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Postcode:    strings.TrimSpace(req.Postcode),
		SellerID:    identity.UserID,
		Status:      strings.TrimSpace(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if listing.Status == "" {
		listing.Status = storage.StatusActive
	}
	if err := h.store.CreateListing(r.Context(), listing); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			httpapi.WriteError(w, apperrors.New(apperrors.CodeAlreadyExists, "listing already exists"))
			return
		}
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toPayload(listing))
}

func (h *Handler) getListing(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	listing, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.WriteError(w, apperrors.New(apperrors.CodeNotFound, "listing not found"))
			return
		}
		httpapi.WriteError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toPayload(listing))
}

// ListResponse is the wire shape of one listing page.
type ListResponse struct {
	Listings      []ListingPayload `json:"listings"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

func (h *Handler) listListings(w http.ResponseWriter, r *http.Request) {
	pageSize := defaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpapi.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "page_size must be a positive integer"))
			return
		}
		pageSize = parsed
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page, err := h.store.ListListings(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		httpapi.WriteError(w, err)
		return
	}
	resp := ListResponse{
		Listings:      make([]ListingPayload, 0, len(page.Listings)),
		NextPageToken: page.NextPageToken,
	}
	for _, listing := range page.Listings {
		resp.Listings = append(resp.Listings, toPayload(listing))
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}
