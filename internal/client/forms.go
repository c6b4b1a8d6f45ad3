package client

import (
	"context"
	"regexp"
	"strings"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/progress"
)

// emailShape is the permissive address check applied before submitting
// surveyor details. It rejects obviously malformed input without trying to
// validate deliverability.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Forms submits the per-step partial updates for one user and transaction.
// Every submit issues exactly one update scoped to that step's fields.
type Forms struct {
	client        *Client
	userID        string
	transactionID string
}

// NewForms creates the step-form submitter for one transaction.
func NewForms(client *Client, userID, transactionID string) *Forms {
	return &Forms{client: client, userID: userID, transactionID: transactionID}
}

func (f *Forms) submit(ctx context.Context, update progress.Update) (progress.Record, error) {
	return f.client.UpdateProgress(ctx, f.userID, f.transactionID, update)
}

func requireField(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.WithMetadata(
			apperrors.CodeFormFieldRequired,
			"field is required",
			map[string]string{"Field": name},
		)
	}
	return value, nil
}

func requireChoice(name, value string, allowed ...string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", apperrors.WithMetadata(
		apperrors.CodeFormChoiceInvalid,
		"value must be one of: "+strings.Join(allowed, ", "),
		map[string]string{"Field": name, "Value": value},
	)
}

// SubmitMortgageDecision records whether the purchase uses a mortgage.
func (f *Forms) SubmitMortgageDecision(ctx context.Context, decision string) (progress.Record, error) {
	decision, err := requireChoice("mortgage_decision", decision, progress.DecisionMortgage, progress.DecisionCash)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{MortgageDecision: progress.String(decision)})
}

// SubmitMortgageProvider records the chosen lender.
func (f *Forms) SubmitMortgageProvider(ctx context.Context, provider string) (progress.Record, error) {
	provider, err := requireField("mortgage_provider", provider)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{MortgageProvider: progress.String(provider)})
}

// SubmitMortgageValuationSurvey records whether the lender requires an
// on-site valuation visit.
func (f *Forms) SubmitMortgageValuationSurvey(ctx context.Context, onsiteRequired string) (progress.Record, error) {
	answer, err := requireChoice("onsite_visit_required", onsiteRequired, progress.AnswerYes, progress.AnswerNo)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{OnsiteVisitRequired: progress.String(answer)})
}

// SubmitValuationVisitSchedule records the seller's offered visit slot.
func (f *Forms) SubmitValuationVisitSchedule(ctx context.Context, date, timeOfDay string) (progress.Record, error) {
	date, err := requireField("mortgage_valuation_schedule_date", date)
	if err != nil {
		return progress.Record{}, err
	}
	timeOfDay, err = requireField("mortgage_valuation_schedule_time", timeOfDay)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{
		MortgageValuationScheduleDate: progress.String(date),
		MortgageValuationScheduleTime: progress.String(timeOfDay),
	})
}

// MarkValuationVisitCompleted records that the valuation visit happened.
func (f *Forms) MarkValuationVisitCompleted(ctx context.Context) (progress.Record, error) {
	return f.submit(ctx, progress.Update{MortgageValuationVisitCompleted: progress.Bool(true)})
}

// SubmitPropertySurveyDecision records whether the buyer commissions an
// independent survey.
func (f *Forms) SubmitPropertySurveyDecision(ctx context.Context, decision string) (progress.Record, error) {
	answer, err := requireChoice("property_survey_decision", decision, progress.AnswerYes, progress.AnswerNo)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{PropertySurveyDecision: progress.String(answer)})
}

// SubmitSurveyorDetails records the surveyor's contact details. The email
// is shape-checked locally so a malformed address never reaches the server.
func (f *Forms) SubmitSurveyorDetails(ctx context.Context, name, email, phone string) (progress.Record, error) {
	name, err := requireField("surveyor_name", name)
	if err != nil {
		return progress.Record{}, err
	}
	email, err = requireField("surveyor_email", email)
	if err != nil {
		return progress.Record{}, err
	}
	if !emailShape.MatchString(email) {
		return progress.Record{}, apperrors.WithMetadata(
			apperrors.CodeSurveyorEmailInvalid,
			"surveyor email is not a valid address",
			map[string]string{"Field": "surveyor_email"},
		)
	}
	phone, err = requireField("surveyor_phone", phone)
	if err != nil {
		return progress.Record{}, err
	}
	// Supplying surveyor details implies the survey decision.
	return f.submit(ctx, progress.Update{
		PropertySurveyDecision: progress.String(progress.AnswerYes),
		SurveyorName:           progress.String(name),
		SurveyorEmail:          progress.String(email),
		SurveyorPhone:          progress.String(phone),
	})
}

// SubmitSurveySchedule records the seller's offered survey slot.
func (f *Forms) SubmitSurveySchedule(ctx context.Context, date, timeOfDay string) (progress.Record, error) {
	date, err := requireField("survey_schedule_date", date)
	if err != nil {
		return progress.Record{}, err
	}
	timeOfDay, err = requireField("survey_schedule_time", timeOfDay)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{
		SurveyScheduleDate: progress.String(date),
		SurveyScheduleTime: progress.String(timeOfDay),
	})
}

// MarkSurveyVisitCompleted records that the survey visit happened.
func (f *Forms) MarkSurveyVisitCompleted(ctx context.Context) (progress.Record, error) {
	return f.submit(ctx, progress.Update{SurveyVisitCompleted: progress.Bool(true)})
}

// SubmitSurveyApproval records the buyer's verdict on the survey report.
func (f *Forms) SubmitSurveyApproval(ctx context.Context, approval string) (progress.Record, error) {
	verdict, err := requireChoice("survey_approval", approval, progress.ApprovalApproved, progress.ApprovalRejected)
	if err != nil {
		return progress.Record{}, err
	}
	return f.submit(ctx, progress.Update{SurveyApproval: progress.String(verdict)})
}

// SubmitSolicitorDetails records the caller's own solicitor. The role
// selects which side's fields the update touches.
func (f *Forms) SubmitSolicitorDetails(ctx context.Context, role progress.Role, name, contact string) (progress.Record, error) {
	name, err := requireField("solicitor_name", name)
	if err != nil {
		return progress.Record{}, err
	}
	contact, err = requireField("solicitor_contact", contact)
	if err != nil {
		return progress.Record{}, err
	}
	update := progress.Update{
		BuyerSolicitorName:    progress.String(name),
		BuyerSolicitorContact: progress.String(contact),
	}
	if role == progress.RoleSeller {
		update = progress.Update{
			SellerSolicitorName:    progress.String(name),
			SellerSolicitorContact: progress.String(contact),
		}
	}
	return f.submit(ctx, update)
}

// ConfirmFinalChecks records the caller's final checks confirmation.
func (f *Forms) ConfirmFinalChecks(ctx context.Context) (progress.Record, error) {
	return f.client.ConfirmStep(ctx, f.userID, f.transactionID, progress.StepFinalChecks)
}

// ConfirmExchangeContracts records the caller's exchange confirmation.
func (f *Forms) ConfirmExchangeContracts(ctx context.Context) (progress.Record, error) {
	return f.client.ConfirmStep(ctx, f.userID, f.transactionID, progress.StepExchangeContracts)
}

// ConfirmCompletion records the caller's completion confirmation.
func (f *Forms) ConfirmCompletion(ctx context.Context) (progress.Record, error) {
	return f.client.ConfirmStep(ctx, f.userID, f.transactionID, progress.StepCompletion)
}
