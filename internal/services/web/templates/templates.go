// Package templates holds the web service's templ components. Components are
// assembled in Go so the view layer stays a plain function of view data.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// CellView is one track cell of a timeline row.
type CellView struct {
	Title       string
	Description string
	Icon        string
	Status      string
	// Hidden cells occupy the row for vertical alignment but render no
	// content.
	Hidden bool
	// Linked cells repeat a step shown on both tracks at the same row.
	Linked bool
}

// RowView is one rendered timeline row: buyer cell, shared dot, seller cell.
type RowView struct {
	Buyer     CellView
	Seller    CellView
	DotStatus string
	// CanOpen rows link to the step form named by the viewer's cell title.
	CanOpen bool
	// OpenTarget is the form path a click navigates to when CanOpen.
	OpenTarget string
}

// TimelineView is the full view model of the timeline page.
type TimelineView struct {
	TransactionID string
	Role          string
	PreOffer      bool
	Rows          []RowView
}

func write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func esc(s string) string {
	return html.EscapeString(s)
}

// Document wraps a body component in the page shell.
func Document(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, "<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">"+
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">"+
			"<title>"+esc(title)+"</title>"+
			"<link rel=\"stylesheet\" href=\"/static/app.css\">"+
			"</head><body><header class=\"site-header\"><a href=\"/\" class=\"brand\">Maison</a></header><main>"); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, "</main></body></html>")
	})
}

// Notification renders the page-level notice region. An empty message still
// renders the region so scripts can target it.
func Notification(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if message == "" {
			return write(w, `<div class="notification" role="status"></div>`)
		}
		return write(w, `<div class="notification notification-error" role="alert">`+esc(message)+`</div>`)
	})
}

// SignInPrompt renders the page shown to unauthenticated viewers.
func SignInPrompt() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, `<section class="signin"><h1>Sign in required</h1>`+
			`<p>Sign in to view your transaction timeline.</p></section>`)
	})
}

// TimelinePage renders the two-track transaction timeline.
func TimelinePage(view TimelineView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		heading := "Transaction Timeline"
		if view.PreOffer {
			heading = "Getting Ready"
		}
		if err := write(w, `<section class="timeline" data-role="`+esc(view.Role)+`" data-transaction="`+esc(view.TransactionID)+`">`+
			`<h1>`+esc(heading)+`</h1>`+
			`<div class="timeline-tracks"><div class="track-heading">Buyer</div><div></div><div class="track-heading">Seller</div>`); err != nil {
			return err
		}
		for i, row := range view.Rows {
			if err := timelineRow(i, row).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, "</div></section>")
	})
}

func timelineRow(index int, row RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		rowClass := "timeline-row"
		if row.CanOpen {
			rowClass += " timeline-row-open"
		}
		open := ""
		if row.CanOpen && row.OpenTarget != "" {
			open = ` data-open="` + esc(row.OpenTarget) + `"`
		}
		if err := write(w, fmt.Sprintf(`<div class=%q data-row="%d"%s>`, rowClass, index, open)); err != nil {
			return err
		}
		if err := stepCell(row.Buyer, "buyer").Render(ctx, w); err != nil {
			return err
		}
		if err := write(w, `<div class="timeline-dot dot-`+esc(row.DotStatus)+`"></div>`); err != nil {
			return err
		}
		if err := stepCell(row.Seller, "seller").Render(ctx, w); err != nil {
			return err
		}
		return write(w, "</div>")
	})
}

func stepCell(cell CellView, side string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if cell.Hidden {
			return write(w, `<div class="step-cell step-hidden" aria-hidden="true"></div>`)
		}
		class := "step-cell step-" + esc(cell.Status) + " step-" + esc(side)
		if cell.Linked {
			class += " step-linked"
		}
		if err := write(w, `<div class="`+class+`">`); err != nil {
			return err
		}
		if cell.Icon != "" {
			if err := write(w, `<span class="step-icon">`+esc(cell.Icon)+`</span>`); err != nil {
				return err
			}
		}
		if err := write(w, `<span class="step-title">`+esc(cell.Title)+`</span>`); err != nil {
			return err
		}
		if cell.Description != "" {
			if err := write(w, `<span class="step-description">`+esc(cell.Description)+`</span>`); err != nil {
				return err
			}
		}
		return write(w, "</div>")
	})
}
