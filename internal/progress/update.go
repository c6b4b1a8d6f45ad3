package progress

import (
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

// Update is a field-level partial update of a Record. Nil fields are left
// untouched; there is no way to delete a field, only to overwrite it.
type Update struct {
	MortgageDecision                *string `json:"mortgage_decision,omitempty"`
	MortgageProvider                *string `json:"mortgage_provider,omitempty"`
	OnsiteVisitRequired             *string `json:"onsite_visit_required,omitempty"`
	MortgageValuationScheduleDate   *string `json:"mortgage_valuation_schedule_date,omitempty"`
	MortgageValuationScheduleTime   *string `json:"mortgage_valuation_schedule_time,omitempty"`
	MortgageValuationVisitCompleted *bool   `json:"mortgage_valuation_visit_completed,omitempty"`

	PropertySurveyDecision *string `json:"property_survey_decision,omitempty"`
	SurveyorName           *string `json:"surveyor_name,omitempty"`
	SurveyorEmail          *string `json:"surveyor_email,omitempty"`
	SurveyorPhone          *string `json:"surveyor_phone,omitempty"`
	SurveyScheduleDate     *string `json:"survey_schedule_date,omitempty"`
	SurveyScheduleTime     *string `json:"survey_schedule_time,omitempty"`
	SurveyVisitCompleted   *bool   `json:"survey_visit_completed,omitempty"`
	SurveyApproval         *string `json:"survey_approval,omitempty"`

	BuyerSolicitorName     *string `json:"buyer_solicitor_name,omitempty"`
	BuyerSolicitorContact  *string `json:"buyer_solicitor_contact,omitempty"`
	SellerSolicitorName    *string `json:"seller_solicitor_name,omitempty"`
	SellerSolicitorContact *string `json:"seller_solicitor_contact,omitempty"`

	BuyerFinalChecksConfirmed        *bool `json:"buyer_final_checks_confirmed,omitempty"`
	SellerFinalChecksConfirmed       *bool `json:"seller_final_checks_confirmed,omitempty"`
	BuyerExchangeContractsConfirmed  *bool `json:"buyer_exchange_contracts_confirmed,omitempty"`
	SellerExchangeContractsConfirmed *bool `json:"seller_exchange_contracts_confirmed,omitempty"`
	BuyerCompletionConfirmed         *bool `json:"buyer_completion_confirmed,omitempty"`
	SellerCompletionConfirmed        *bool `json:"seller_completion_confirmed,omitempty"`
}

// IsEmpty reports whether the update changes no fields.
func (u Update) IsEmpty() bool {
	return len(u.fields()) == 0
}

// field pairs an update entry with its column name and owning role.
type field struct {
	name    string
	owner   Role
	strVal  *string
	boolVal *bool
}

// fields lists the set (non-nil) fields of the update.
//
// Ownership resolves the concurrent-edit ambiguity of the original system:
// each flag has exactly one writing side, so last-write-wins within a field
// can never cross parties. Buyer owns the mortgage, survey decision and
// buyer_* fields; seller owns scheduling, visit completion and seller_*
// fields.
func (u Update) fields() []field {
	var out []field
	add := func(name string, owner Role, strVal *string, boolVal *bool) {
		if strVal == nil && boolVal == nil {
			return
		}
		out = append(out, field{name: name, owner: owner, strVal: strVal, boolVal: boolVal})
	}

	add("mortgage_decision", RoleBuyer, u.MortgageDecision, nil)
	add("mortgage_provider", RoleBuyer, u.MortgageProvider, nil)
	add("onsite_visit_required", RoleBuyer, u.OnsiteVisitRequired, nil)
	add("mortgage_valuation_schedule_date", RoleSeller, u.MortgageValuationScheduleDate, nil)
	add("mortgage_valuation_schedule_time", RoleSeller, u.MortgageValuationScheduleTime, nil)
	add("mortgage_valuation_visit_completed", RoleSeller, nil, u.MortgageValuationVisitCompleted)

	add("property_survey_decision", RoleBuyer, u.PropertySurveyDecision, nil)
	add("surveyor_name", RoleBuyer, u.SurveyorName, nil)
	add("surveyor_email", RoleBuyer, u.SurveyorEmail, nil)
	add("surveyor_phone", RoleBuyer, u.SurveyorPhone, nil)
	add("survey_schedule_date", RoleSeller, u.SurveyScheduleDate, nil)
	add("survey_schedule_time", RoleSeller, u.SurveyScheduleTime, nil)
	add("survey_visit_completed", RoleSeller, nil, u.SurveyVisitCompleted)
	add("survey_approval", RoleBuyer, u.SurveyApproval, nil)

	add("buyer_solicitor_name", RoleBuyer, u.BuyerSolicitorName, nil)
	add("buyer_solicitor_contact", RoleBuyer, u.BuyerSolicitorContact, nil)
	add("seller_solicitor_name", RoleSeller, u.SellerSolicitorName, nil)
	add("seller_solicitor_contact", RoleSeller, u.SellerSolicitorContact, nil)

	add("buyer_final_checks_confirmed", RoleBuyer, nil, u.BuyerFinalChecksConfirmed)
	add("seller_final_checks_confirmed", RoleSeller, nil, u.SellerFinalChecksConfirmed)
	add("buyer_exchange_contracts_confirmed", RoleBuyer, nil, u.BuyerExchangeContractsConfirmed)
	add("seller_exchange_contracts_confirmed", RoleSeller, nil, u.SellerExchangeContractsConfirmed)
	add("buyer_completion_confirmed", RoleBuyer, nil, u.BuyerCompletionConfirmed)
	add("seller_completion_confirmed", RoleSeller, nil, u.SellerCompletionConfirmed)

	return out
}

// Fields exposes the set fields as (column, value) pairs for storage layers.
func (u Update) Fields() []FieldValue {
	raw := u.fields()
	out := make([]FieldValue, 0, len(raw))
	for _, f := range raw {
		value := any(nil)
		if f.strVal != nil {
			value = *f.strVal
		} else if f.boolVal != nil {
			value = *f.boolVal
		}
		out = append(out, FieldValue{Name: f.name, Value: value})
	}
	return out
}

// FieldValue is one set field of a partial update.
type FieldValue struct {
	Name  string
	Value any
}

// CheckOwnership rejects updates touching fields the role does not own.
func (u Update) CheckOwnership(role Role) error {
	for _, f := range u.fields() {
		if f.owner != role {
			return apperrors.WithMetadata(
				apperrors.CodeProgressFieldNotOwned,
				"field is not writable by this role",
				map[string]string{"Field": f.name, "Role": string(role)},
			)
		}
	}
	return nil
}

// Apply copies the set fields of the update onto a record.
func (u Update) Apply(r Record) Record {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&r.MortgageDecision, u.MortgageDecision)
	setStr(&r.MortgageProvider, u.MortgageProvider)
	setStr(&r.OnsiteVisitRequired, u.OnsiteVisitRequired)
	setStr(&r.MortgageValuationScheduleDate, u.MortgageValuationScheduleDate)
	setStr(&r.MortgageValuationScheduleTime, u.MortgageValuationScheduleTime)
	setBool(&r.MortgageValuationVisitCompleted, u.MortgageValuationVisitCompleted)

	setStr(&r.PropertySurveyDecision, u.PropertySurveyDecision)
	setStr(&r.SurveyorName, u.SurveyorName)
	setStr(&r.SurveyorEmail, u.SurveyorEmail)
	setStr(&r.SurveyorPhone, u.SurveyorPhone)
	setStr(&r.SurveyScheduleDate, u.SurveyScheduleDate)
	setStr(&r.SurveyScheduleTime, u.SurveyScheduleTime)
	setBool(&r.SurveyVisitCompleted, u.SurveyVisitCompleted)
	setStr(&r.SurveyApproval, u.SurveyApproval)

	setStr(&r.BuyerSolicitorName, u.BuyerSolicitorName)
	setStr(&r.BuyerSolicitorContact, u.BuyerSolicitorContact)
	setStr(&r.SellerSolicitorName, u.SellerSolicitorName)
	setStr(&r.SellerSolicitorContact, u.SellerSolicitorContact)

	setBool(&r.BuyerFinalChecksConfirmed, u.BuyerFinalChecksConfirmed)
	setBool(&r.SellerFinalChecksConfirmed, u.SellerFinalChecksConfirmed)
	setBool(&r.BuyerExchangeContractsConfirmed, u.BuyerExchangeContractsConfirmed)
	setBool(&r.SellerExchangeContractsConfirmed, u.SellerExchangeContractsConfirmed)
	setBool(&r.BuyerCompletionConfirmed, u.BuyerCompletionConfirmed)
	setBool(&r.SellerCompletionConfirmed, u.SellerCompletionConfirmed)

	return r
}

// String returns a pointer to a string literal, for building updates.
func String(value string) *string { return &value }

// Bool returns a pointer to a bool literal, for building updates.
func Bool(value bool) *bool { return &value }
