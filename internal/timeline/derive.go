package timeline

import (
	"strings"

	"github.com/maisonhq/maison/internal/progress"
)

// Input carries the client-local state that feeds derivation alongside the
// progress record.
type Input struct {
	// OfferAccepted selects between the fixed pre-offer checklist and the
	// derived post-offer timeline.
	OfferAccepted bool
	// OfferDocumentAttached reports whether a mortgage offer document has
	// been attached locally. The attachment never leaves the client, so it
	// is not part of the progress record.
	OfferDocumentAttached bool
}

// DeriveBuyer returns the buyer track for the record.
func DeriveBuyer(r progress.Record, in Input) []Step {
	if !in.OfferAccepted {
		return PreOfferBuyer()
	}
	buyer, _ := postOfferTracks(r, in)
	return buyer
}

// DeriveSeller returns the seller track for the record.
func DeriveSeller(r progress.Record, in Input) []Step {
	if !in.OfferAccepted {
		return PreOfferSeller()
	}
	_, seller := postOfferTracks(r, in)
	return seller
}

// DeriveTracks returns both tracks at once. The tracks always have equal
// length: rows where only one side has a step carry a placeholder on the
// other side.
func DeriveTracks(r progress.Record, in Input) (buyer, seller []Step) {
	if !in.OfferAccepted {
		return PreOfferBuyer(), PreOfferSeller()
	}
	return postOfferTracks(r, in)
}

// postOfferTracks builds both tracks in one pass so the alignment invariant
// holds by construction.
func postOfferTracks(r progress.Record, in Input) (buyer, seller []Step) {
	pair := func(b, s Step) {
		buyer = append(buyer, b)
		seller = append(seller, s)
	}

	pair(mortgageApplicationStep(r), placeholder())

	if r.MortgageProviderKnown() {
		pair(mortgageValuationStep(r), placeholder())
	}
	if r.OnsiteVisitRequired == progress.AnswerYes {
		pair(placeholder(), scheduleValuationVisitStep(r))
	}
	if r.OnsiteVisitRequired == progress.AnswerNo || r.MortgageValuationVisitCompleted {
		pair(mortgageOfferStep(in.OfferDocumentAttached), placeholder())
	}

	pair(propertySurveyBuyerStep(r), propertySurveySellerStep(r))

	if r.SurveyorDetailsComplete() {
		pair(placeholder(), scheduleSurveyStep(r))
	}
	if r.SurveyVisitCompleted {
		pair(approveSurveyResultsStep(r), placeholder())
	}

	pair(conveyancingStep(r, progress.RoleBuyer), conveyancingStep(r, progress.RoleSeller))

	pair(
		closingStep(TitleFinalChecks, "clipboard-check",
			"Review all documentation and agreements",
			r.BuyerFinalChecksConfirmed, r.SellerFinalChecksConfirmed),
	)
	pair(
		closingStep(TitleExchangeContracts, "file-check",
			"Sign and exchange contracts with the seller",
			r.BuyerExchangeContractsConfirmed, r.SellerExchangeContractsConfirmed),
	)
	pair(
		closingStep(TitleCompletion, "key",
			"Transfer payment and receive the keys",
			r.BuyerCompletionConfirmed, r.SellerCompletionConfirmed),
	)

	return buyer, seller
}

func mortgageApplicationStep(r progress.Record) Step {
	step := Step{
		Title: TitleMortgageApplication,
		Icon:  "piggy-bank",
	}
	switch {
	case r.MortgageDecision == progress.DecisionCash:
		step.Status = StatusCompleted
		step.Description = "Cash purchase, no mortgage required"
	case r.MortgageProviderKnown():
		step.Status = StatusCompleted
		step.Description = "Full application submitted with " + strings.TrimSpace(r.MortgageProvider)
	case r.MortgageDecision == progress.DecisionMortgage:
		step.Status = StatusCurrent
		step.Description = "Choose a lender and submit your full mortgage application"
	default:
		step.Status = StatusPending
		step.Description = "Tell us how you plan to fund the purchase"
	}
	return step
}

func mortgageValuationStep(r progress.Record) Step {
	step := Step{
		Title: TitleMortgageValuation,
		Icon:  "home",
	}
	switch r.OnsiteVisitRequired {
	case progress.AnswerYes:
		step.Status = StatusCompleted
		step.Description = "Your lender requires an on-site valuation visit"
	case progress.AnswerNo:
		step.Status = StatusCompleted
		step.Description = "Desktop valuation only, no visit needed"
	default:
		step.Status = StatusCurrent
		step.Description = "Confirm whether your lender needs an on-site valuation"
	}
	return step
}

func scheduleValuationVisitStep(r progress.Record) Step {
	step := Step{
		Title: TitleScheduleValuationVisit,
		Icon:  "calendar",
	}
	date := strings.TrimSpace(r.MortgageValuationScheduleDate)
	timeOfDay := strings.TrimSpace(r.MortgageValuationScheduleTime)
	switch {
	case r.MortgageValuationVisitCompleted:
		step.Status = StatusCompleted
		step.Description = "Valuation visit completed"
	case date != "" && timeOfDay != "":
		step.Status = StatusCurrent
		step.Description = "Visit scheduled for " + date + " at " + timeOfDay
	default:
		step.Status = StatusCurrent
		step.Description = "Offer times for the lender's valuation visit"
	}
	return step
}

func mortgageOfferStep(documentAttached bool) Step {
	step := Step{
		Title: TitleMortgageOffer,
		Icon:  "file-text",
	}
	if documentAttached {
		step.Status = StatusCompleted
		step.Description = "Mortgage offer received and on file"
	} else {
		step.Status = StatusCurrent
		step.Description = "Upload your formal mortgage offer once it arrives"
	}
	return step
}

func propertySurveyBuyerStep(r progress.Record) Step {
	step := Step{
		Title: TitlePropertySurvey,
		Icon:  "building-2",
	}
	switch {
	case r.PropertySurveyDecision == progress.AnswerNo:
		step.Status = StatusCompleted
		step.Description = "No independent survey required"
	case r.PropertySurveyDecision == progress.AnswerYes && r.SurveyorDetailsComplete():
		step.Status = StatusCompleted
		step.Description = "Survey arranged with " + strings.TrimSpace(r.SurveyorName)
	case r.PropertySurveyDecision == progress.AnswerYes:
		step.Status = StatusCurrent
		step.Description = "Provide your surveyor's contact details"
	default:
		step.Status = StatusPending
		step.Description = "Decide whether to commission an independent survey"
	}
	return step
}

func propertySurveySellerStep(r progress.Record) Step {
	step := propertySurveyBuyerStep(r)
	step.Description = "Allow the buyer to conduct a property survey"
	return step
}

func scheduleSurveyStep(r progress.Record) Step {
	step := Step{
		Title: TitleScheduleSurvey,
		Icon:  "calendar",
	}
	date := strings.TrimSpace(r.SurveyScheduleDate)
	timeOfDay := strings.TrimSpace(r.SurveyScheduleTime)
	switch {
	case r.SurveyVisitCompleted:
		step.Status = StatusCompleted
		step.Description = "Survey visit completed"
	case date != "" && timeOfDay != "":
		step.Status = StatusCurrent
		step.Description = "Survey scheduled for " + date + " at " + timeOfDay
	default:
		step.Status = StatusCurrent
		step.Description = "Offer times for the buyer's survey visit"
	}
	return step
}

func approveSurveyResultsStep(r progress.Record) Step {
	step := Step{
		Title: TitleApproveSurveyResults,
		Icon:  "check-circle-2",
	}
	switch r.SurveyApproval {
	case progress.ApprovalApproved:
		step.Status = StatusCompleted
		step.Description = "Survey results approved"
	case progress.ApprovalRejected:
		step.Status = StatusCurrent
		step.Description = "Survey issues raised with the seller"
	default:
		step.Status = StatusCurrent
		step.Description = "Review the surveyor's report"
	}
	return step
}

func conveyancingStep(r progress.Record, role progress.Role) Step {
	step := Step{
		Title:       TitleConveyancing,
		Icon:        "scale",
		Description: "Legal work and documentation",
	}
	buyerSet := strings.TrimSpace(r.BuyerSolicitorName) != ""
	sellerSet := strings.TrimSpace(r.SellerSolicitorName) != ""
	ownSet := buyerSet
	if role == progress.RoleSeller {
		ownSet = sellerSet
	}
	switch {
	case buyerSet && sellerSet:
		step.Status = StatusCompleted
		step.Description = "Both solicitors instructed"
	case ownSet:
		step.Status = StatusCurrent
		step.Description = "Waiting for the other party to instruct a solicitor"
	default:
		step.Status = StatusPending
		step.Description = "Instruct a solicitor to handle the legal work"
	}
	return step
}

// closingStep derives one of the jointly-confirmed closing steps. Both
// tracks show the same status: completed when both sides have confirmed,
// current when exactly one has.
func closingStep(title, icon, description string, buyerConfirmed, sellerConfirmed bool) (Step, Step) {
	step := Step{
		Title:       title,
		Icon:        icon,
		Description: description,
	}
	switch {
	case buyerConfirmed && sellerConfirmed:
		step.Status = StatusCompleted
	case buyerConfirmed || sellerConfirmed:
		step.Status = StatusCurrent
	default:
		step.Status = StatusPending
	}
	sellerStep := step
	if title == TitleExchangeContracts {
		sellerStep.Description = "Sign and exchange contracts with the buyer"
	}
	if title == TitleCompletion {
		sellerStep.Description = "Transfer ownership and receive payment"
	}
	return step, sellerStep
}
