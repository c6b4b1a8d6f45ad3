// Package progress defines the per-transaction progress record shared by the
// progress service, the timeline derivation, and the REST client.
package progress

import (
	"strings"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

// Role identifies which side of a transaction a party acts for.
type Role string

const (
	// RoleBuyer marks the purchasing party.
	RoleBuyer Role = "buyer"
	// RoleSeller marks the selling party.
	RoleSeller Role = "seller"
)

// ParseRole validates a role string.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleSeller:
		return RoleSeller, nil
	}
	return "", apperrors.WithMetadata(
		apperrors.CodeProgressInvalidRole,
		"role must be buyer or seller",
		map[string]string{"Field": "role"},
	)
}

// Values for three-way decision flags. The empty string is the unset
// sentinel for every string flag; booleans default to false. The client
// never invents values: a flag only leaves its sentinel through an explicit
// partial update.
const (
	DecisionMortgage = "mortgage"
	DecisionCash     = "cash"

	AnswerYes = "yes"
	AnswerNo  = "no"

	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Record is the flat per-(user, transaction) progress record. Field names on
// the wire are snake_case, matching the progress REST API.
type Record struct {
	UserID        string `json:"-"`
	TransactionID string `json:"-"`

	// Mortgage
	MortgageDecision                string `json:"mortgage_decision"`
	MortgageProvider                string `json:"mortgage_provider"`
	OnsiteVisitRequired             string `json:"onsite_visit_required"`
	MortgageValuationScheduleDate   string `json:"mortgage_valuation_schedule_date"`
	MortgageValuationScheduleTime   string `json:"mortgage_valuation_schedule_time"`
	MortgageValuationVisitCompleted bool   `json:"mortgage_valuation_visit_completed"`

	// Survey
	PropertySurveyDecision string `json:"property_survey_decision"`
	SurveyorName           string `json:"surveyor_name"`
	SurveyorEmail          string `json:"surveyor_email"`
	SurveyorPhone          string `json:"surveyor_phone"`
	SurveyScheduleDate     string `json:"survey_schedule_date"`
	SurveyScheduleTime     string `json:"survey_schedule_time"`
	SurveyVisitCompleted   bool   `json:"survey_visit_completed"`
	SurveyApproval         string `json:"survey_approval"`

	// Conveyancing
	BuyerSolicitorName     string `json:"buyer_solicitor_name"`
	BuyerSolicitorContact  string `json:"buyer_solicitor_contact"`
	SellerSolicitorName    string `json:"seller_solicitor_name"`
	SellerSolicitorContact string `json:"seller_solicitor_contact"`

	// Closing
	BuyerFinalChecksConfirmed        bool `json:"buyer_final_checks_confirmed"`
	SellerFinalChecksConfirmed       bool `json:"seller_final_checks_confirmed"`
	BuyerExchangeContractsConfirmed  bool `json:"buyer_exchange_contracts_confirmed"`
	SellerExchangeContractsConfirmed bool `json:"seller_exchange_contracts_confirmed"`
	BuyerCompletionConfirmed         bool `json:"buyer_completion_confirmed"`
	SellerCompletionConfirmed        bool `json:"seller_completion_confirmed"`
}

// SurveyorDetailsComplete reports whether all surveyor contact fields are set.
func (r Record) SurveyorDetailsComplete() bool {
	return strings.TrimSpace(r.SurveyorName) != "" &&
		strings.TrimSpace(r.SurveyorEmail) != "" &&
		strings.TrimSpace(r.SurveyorPhone) != ""
}

// MortgageProviderKnown reports whether a mortgage is being used and the
// provider has been chosen.
func (r Record) MortgageProviderKnown() bool {
	return r.MortgageDecision == DecisionMortgage && strings.TrimSpace(r.MortgageProvider) != ""
}
