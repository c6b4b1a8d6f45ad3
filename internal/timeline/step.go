// Package timeline derives the post-offer transaction timeline from the flat
// progress record. Derivation is pure: the step lists are a deterministic
// function of the record, the viewer role and the accepted-offer state, and
// are recomputed on every use instead of being stored. Jointly-determined
// steps (both parties must confirm) therefore can never drift out of sync
// with the underlying flags.
package timeline

// Status is the tri-state display status of a step.
type Status string

const (
	// StatusPending marks a step that cannot be worked on yet.
	StatusPending Status = "pending"
	// StatusCurrent marks the step awaiting action.
	StatusCurrent Status = "current"
	// StatusCompleted marks a finished step.
	StatusCompleted Status = "completed"
)

// Step is one node of a derived timeline track.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Status      Status `json:"status"`
	// Placeholder rows carry no content; they keep the buyer and seller
	// tracks vertically aligned when only one side has a step at a row.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Post-offer step titles. Titles double as the task key a click on the
// rendered row opens a form for.
const (
	TitleMortgageApplication    = "Mortgage Application"
	TitleMortgageValuation      = "Mortgage Valuation Survey"
	TitleScheduleValuationVisit = "Schedule Mortgage Valuation Visit"
	TitleMortgageOffer          = "Mortgage Offer"
	TitlePropertySurvey         = "Property Survey"
	TitleScheduleSurvey         = "Schedule Survey"
	TitleApproveSurveyResults   = "Approve Survey Results"
	TitleConveyancing           = "Conveyancing"
	TitleFinalChecks            = "Final Checks"
	TitleExchangeContracts      = "Exchange Contracts"
	TitleCompletion             = "Completion"
)

// linkedTitles are the steps rendered at the same row on both tracks with a
// shared timeline dot.
var linkedTitles = map[string]bool{
	TitlePropertySurvey:    true,
	TitleConveyancing:      true,
	TitleFinalChecks:       true,
	TitleExchangeContracts: true,
	TitleCompletion:        true,
}

// Linked reports whether a step title is rendered on both tracks at once.
func Linked(title string) bool {
	return linkedTitles[title]
}

// closingTitles are sequentially unlocked: their forms are reachable only
// once every earlier step on the track is a placeholder or completed.
var closingTitles = map[string]bool{
	TitleFinalChecks:       true,
	TitleExchangeContracts: true,
	TitleCompletion:        true,
}

func placeholder() Step {
	return Step{Status: StatusPending, Placeholder: true}
}
