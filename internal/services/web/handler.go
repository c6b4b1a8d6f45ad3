// Package web renders the transaction timeline as server-side HTML backed by
// the progress REST API.
package web

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/maisonhq/maison/internal/auth"
	"github.com/maisonhq/maison/internal/client"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/services/web/templates"
	"github.com/maisonhq/maison/internal/timeline"
)

// SessionCookie carries the signed-in viewer's bearer token for page loads
// that cannot set an Authorization header.
const SessionCookie = "maison_token"

// TimelineFetcher fetches a derived timeline on behalf of a viewer token.
type TimelineFetcher interface {
	FetchTimeline(ctx context.Context, token, userID, transactionID string, role progress.Role, input timeline.Input) (client.Timeline, error)
}

// RESTFetcher fetches timelines from the progress service REST API.
type RESTFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTFetcher creates a fetcher targeting the progress service base URL.
func NewRESTFetcher(baseURL string, httpClient *http.Client) *RESTFetcher {
	return &RESTFetcher{baseURL: baseURL, httpClient: httpClient}
}

// FetchTimeline fetches the derived timeline with the viewer's own token.
func (f *RESTFetcher) FetchTimeline(ctx context.Context, token, userID, transactionID string, role progress.Role, input timeline.Input) (client.Timeline, error) {
	c := client.NewWithHTTPClient(f.baseURL, client.StaticToken(token), f.httpClient)
	return c.GetTimeline(ctx, userID, transactionID, role, input)
}

// Handler serves the timeline pages. Successfully fetched timelines are kept
// per viewer and transaction so a later fetch failure can still render the
// last known rows next to the failure notice.
type Handler struct {
	authCfg auth.Config
	fetcher TimelineFetcher

	mu       sync.Mutex
	hydrated map[string]client.Timeline
}

// NewHandler creates a web handler for the given auth config and fetcher.
func NewHandler(authCfg auth.Config, fetcher TimelineFetcher) *Handler {
	return &Handler{
		authCfg:  authCfg,
		fetcher:  fetcher,
		hydrated: make(map[string]client.Timeline),
	}
}

// Mux returns the web route table.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions/{transactionID}/timeline", h.timelinePage)
	mux.HandleFunc("GET /", h.homePage)
	return mux
}

func (h *Handler) homePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "Maison", templates.SignInPrompt())
}

func (h *Handler) timelinePage(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.viewer(r)
	if !ok {
		h.render(w, r, http.StatusUnauthorized, "Sign in", templates.SignInPrompt())
		return
	}
	transactionID := strings.TrimSpace(r.PathValue("transactionID"))
	if transactionID == "" {
		http.NotFound(w, r)
		return
	}

	role := identity.Role
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role = progress.Role(raw)
	}
	input := timeline.Input{OfferAccepted: true}
	if raw := r.URL.Query().Get("offer_accepted"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			input.OfferAccepted = parsed
		}
	}
	if raw := r.URL.Query().Get("offer_document_attached"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			input.OfferDocumentAttached = parsed
		}
	}

	token := viewerToken(r)
	fetched, err := h.fetcher.FetchTimeline(r.Context(), token, identity.UserID, transactionID, role, input)
	if err != nil {
		log.Printf("fetch timeline for %s/%s: %v", identity.UserID, transactionID, err)
		h.renderFailure(w, r, identity.UserID, transactionID, input, err)
		return
	}
	h.remember(identity.UserID, transactionID, fetched)

	view := buildView(transactionID, fetched, input)
	h.render(w, r, http.StatusOK, "Transaction Timeline", templates.TimelinePage(view))
}

// renderFailure renders the page shell with a failure notice, reusing the
// last successfully fetched timeline when one exists.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, userID, transactionID string, input timeline.Input, fetchErr error) {
	notice := templates.Notification("The timeline could not be refreshed. Showing your last known progress.")
	cached, ok := h.recall(userID, transactionID)
	if !ok {
		notice = templates.Notification("The timeline could not be loaded. Please try again.")
		h.render(w, r, http.StatusOK, "Transaction Timeline", joined(notice, templates.TimelinePage(templates.TimelineView{
			TransactionID: transactionID,
		})))
		return
	}
	view := buildView(transactionID, cached, input)
	h.render(w, r, http.StatusOK, "Transaction Timeline", joined(notice, templates.TimelinePage(view)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, statusCode int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.Document(title, body).Render(r.Context(), w); err != nil {
		log.Printf("render page: %v", err)
	}
}

func (h *Handler) viewer(r *http.Request) (auth.Identity, bool) {
	token := viewerToken(r)
	if token == "" {
		return auth.Identity{}, false
	}
	identity, err := auth.Verify(h.authCfg, token)
	if err != nil {
		return auth.Identity{}, false
	}
	return identity, true
}

func viewerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (h *Handler) remember(userID, transactionID string, fetched client.Timeline) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hydrated[userID+"/"+transactionID] = fetched
}

func (h *Handler) recall(userID, transactionID string) (client.Timeline, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cached, ok := h.hydrated[userID+"/"+transactionID]
	return cached, ok
}

// buildView maps a fetched timeline onto the page view model.
func buildView(transactionID string, fetched client.Timeline, input timeline.Input) templates.TimelineView {
	view := templates.TimelineView{
		TransactionID: transactionID,
		Role:          string(fetched.Role),
		PreOffer:      !input.OfferAccepted,
		Rows:          make([]templates.RowView, 0, len(fetched.Rows)),
	}
	for _, row := range fetched.Rows {
		rowView := templates.RowView{
			Buyer:     cellView(row.Buyer),
			Seller:    cellView(row.Seller),
			DotStatus: string(row.DotStatus),
			CanOpen:   row.CanOpen,
		}
		if row.CanOpen {
			own := row.Buyer
			if fetched.Role == progress.RoleSeller {
				own = row.Seller
			}
			rowView.OpenTarget = stepFormPath(transactionID, own.Title)
		}
		view.Rows = append(view.Rows, rowView)
	}
	return view
}

func cellView(step timeline.Step) templates.CellView {
	if step.Placeholder {
		return templates.CellView{Hidden: true}
	}
	return templates.CellView{
		Title:       step.Title,
		Description: step.Description,
		Icon:        step.Icon,
		Status:      string(step.Status),
		Linked:      timeline.Linked(step.Title),
	}
}

func stepFormPath(transactionID, title string) string {
	return "/transactions/" + url.PathEscape(transactionID) + "/steps/" + url.PathEscape(title)
}

func joined(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, part := range parts {
			if part == nil {
				continue
			}
			if err := part.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
