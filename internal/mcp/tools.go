package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maisonhq/maison/internal/client"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/timeline"
)

// ProgressAPI is the slice of the progress client the tools call.
type ProgressAPI interface {
	GetTimeline(ctx context.Context, userID, transactionID string, role progress.Role, input timeline.Input) (client.Timeline, error)
	UpdateProgress(ctx context.Context, userID, transactionID string, update progress.Update) (progress.Record, error)
}

// GetTimelineInput identifies the transaction and viewer for a timeline read.
type GetTimelineInput struct {
	UserID                string `json:"user_id" jsonschema:"identifier of the signed-in user"`
	TransactionID         string `json:"transaction_id" jsonschema:"identifier of the property transaction"`
	Role                  string `json:"role,omitempty" jsonschema:"viewer role (buyer or seller), defaults to the token's role"`
	OfferAccepted         *bool  `json:"offer_accepted,omitempty" jsonschema:"whether an offer has been accepted, defaults to true"`
	OfferDocumentAttached bool   `json:"offer_document_attached,omitempty" jsonschema:"whether the signed offer document has been attached"`
}

// TimelineStepResult is one derived step of a track.
type TimelineStepResult struct {
	Title       string `json:"title,omitempty" jsonschema:"step title, empty for alignment placeholders"`
	Description string `json:"description,omitempty" jsonschema:"step description"`
	Status      string `json:"status" jsonschema:"step status (pending, current or completed)"`
	Placeholder bool   `json:"placeholder,omitempty" jsonschema:"true when the step only keeps the tracks aligned"`
}

// TimelineRowResult is one aligned row of the two-track timeline.
type TimelineRowResult struct {
	Buyer     TimelineStepResult `json:"buyer" jsonschema:"buyer-side cell"`
	Seller    TimelineStepResult `json:"seller" jsonschema:"seller-side cell"`
	DotStatus string             `json:"dot_status" jsonschema:"shared row dot status"`
	CanOpen   bool               `json:"can_open" jsonschema:"whether the viewer can open the step form"`
}

// GetTimelineResult is the derived timeline for both parties.
type GetTimelineResult struct {
	Role   string              `json:"role" jsonschema:"role the timeline was derived for"`
	Buyer  []TimelineStepResult `json:"buyer" jsonschema:"buyer track"`
	Seller []TimelineStepResult `json:"seller" jsonschema:"seller track"`
	Rows   []TimelineRowResult  `json:"rows" jsonschema:"aligned rows of both tracks"`
}

// GetTimelineTool defines the MCP tool schema for reading a timeline.
func GetTimelineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_transaction_timeline",
		Description: "Derives the buyer and seller timeline tracks for a property transaction from its stored progress",
	}
}

// GetTimelineHandler executes a timeline read against the progress service.
func GetTimelineHandler(api ProgressAPI) mcp.ToolHandlerFor[GetTimelineInput, GetTimelineResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetTimelineInput) (*mcp.CallToolResult, GetTimelineResult, error) {
		role := progress.Role(strings.TrimSpace(input.Role))
		derivationInput := timeline.Input{
			OfferAccepted:         true,
			OfferDocumentAttached: input.OfferDocumentAttached,
		}
		if input.OfferAccepted != nil {
			derivationInput.OfferAccepted = *input.OfferAccepted
		}
		fetched, err := api.GetTimeline(ctx, input.UserID, input.TransactionID, role, derivationInput)
		if err != nil {
			return nil, GetTimelineResult{}, fmt.Errorf("get timeline failed: %w", err)
		}
		result := GetTimelineResult{
			Role:   string(fetched.Role),
			Buyer:  stepResults(fetched.Buyer),
			Seller: stepResults(fetched.Seller),
			Rows:   make([]TimelineRowResult, 0, len(fetched.Rows)),
		}
		for _, row := range fetched.Rows {
			result.Rows = append(result.Rows, TimelineRowResult{
				Buyer:     stepResult(row.Buyer),
				Seller:    stepResult(row.Seller),
				DotStatus: string(row.DotStatus),
				CanOpen:   row.CanOpen,
			})
		}
		return nil, result, nil
	}
}

// UpdateProgressInput carries a partial progress update. Absent fields stay
// untouched.
type UpdateProgressInput struct {
	UserID        string          `json:"user_id" jsonschema:"identifier of the signed-in user"`
	TransactionID string          `json:"transaction_id" jsonschema:"identifier of the property transaction"`
	Update        progress.Update `json:"update" jsonschema:"progress fields to set, omitted fields are left unchanged"`
}

// UpdateProgressResult is the stored record after the update.
type UpdateProgressResult struct {
	Record progress.Record `json:"record" jsonschema:"full progress record after the update"`
}

// UpdateProgressTool defines the MCP tool schema for a partial update.
func UpdateProgressTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_transaction_progress",
		Description: "Applies a partial update to a property transaction's progress record and returns the stored record",
	}
}

// UpdateProgressHandler executes a partial progress update.
func UpdateProgressHandler(api ProgressAPI) mcp.ToolHandlerFor[UpdateProgressInput, UpdateProgressResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateProgressInput) (*mcp.CallToolResult, UpdateProgressResult, error) {
		record, err := api.UpdateProgress(ctx, input.UserID, input.TransactionID, input.Update)
		if err != nil {
			return nil, UpdateProgressResult{}, fmt.Errorf("update progress failed: %w", err)
		}
		return nil, UpdateProgressResult{Record: record}, nil
	}
}

func stepResults(track []timeline.Step) []TimelineStepResult {
	results := make([]TimelineStepResult, 0, len(track))
	for _, step := range track {
		results = append(results, stepResult(step))
	}
	return results
}

func stepResult(step timeline.Step) TimelineStepResult {
	return TimelineStepResult{
		Title:       step.Title,
		Description: step.Description,
		Status:      string(step.Status),
		Placeholder: step.Placeholder,
	}
}
