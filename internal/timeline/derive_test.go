package timeline

import (
	"reflect"
	"testing"

	"github.com/maisonhq/maison/internal/progress"
)

func postOffer() Input {
	return Input{OfferAccepted: true}
}

func findStep(t *testing.T, track []Step, title string) (Step, int) {
	t.Helper()
	for i, step := range track {
		if step.Title == title {
			return step, i
		}
	}
	t.Fatalf("step %q not found in track", title)
	return Step{}, -1
}

func hasStep(track []Step, title string) bool {
	for _, step := range track {
		if step.Title == title {
			return true
		}
	}
	return false
}

func TestMortgageApplicationCashAlwaysCompleted(t *testing.T) {
	t.Parallel()

	// Cash purchases complete the step regardless of provider.
	for _, provider := range []string{"", "Halifax"} {
		record := progress.Record{
			MortgageDecision: progress.DecisionCash,
			MortgageProvider: provider,
		}
		track := DeriveBuyer(record, postOffer())
		step, _ := findStep(t, track, TitleMortgageApplication)
		if step.Status != StatusCompleted {
			t.Fatalf("provider %q: status = %q, want %q", provider, step.Status, StatusCompleted)
		}
	}
}

func TestMortgageApplicationProviderProgression(t *testing.T) {
	t.Parallel()

	record := progress.Record{MortgageDecision: progress.DecisionMortgage}
	step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleMortgageApplication)
	if step.Status != StatusCurrent {
		t.Fatalf("without provider: status = %q, want %q", step.Status, StatusCurrent)
	}

	record.MortgageProvider = "Nationwide"
	step, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleMortgageApplication)
	if step.Status != StatusCompleted {
		t.Fatalf("with provider: status = %q, want %q", step.Status, StatusCompleted)
	}
	if step.Description != "Full application submitted with Nationwide" {
		t.Fatalf("description = %q", step.Description)
	}
}

func TestMortgageApplicationUnsetPending(t *testing.T) {
	t.Parallel()

	step, _ := findStep(t, DeriveBuyer(progress.Record{}, postOffer()), TitleMortgageApplication)
	if step.Status != StatusPending {
		t.Fatalf("status = %q, want %q", step.Status, StatusPending)
	}
}

func TestMortgageValuationPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		record  progress.Record
		present bool
	}{
		{"unset decision", progress.Record{}, false},
		{"cash", progress.Record{MortgageDecision: progress.DecisionCash}, false},
		{"mortgage without provider", progress.Record{MortgageDecision: progress.DecisionMortgage}, false},
		{"mortgage with provider", progress.Record{MortgageDecision: progress.DecisionMortgage, MortgageProvider: "Halifax"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			track := DeriveBuyer(tc.record, postOffer())
			if got := hasStep(track, TitleMortgageValuation); got != tc.present {
				t.Fatalf("present = %v, want %v", got, tc.present)
			}
		})
	}
}

func TestMortgageValuationStatusFollowsOnsiteAnswer(t *testing.T) {
	t.Parallel()

	record := progress.Record{MortgageDecision: progress.DecisionMortgage, MortgageProvider: "Halifax"}
	step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleMortgageValuation)
	if step.Status != StatusCurrent {
		t.Fatalf("unanswered: status = %q, want %q", step.Status, StatusCurrent)
	}

	for _, answer := range []string{progress.AnswerYes, progress.AnswerNo} {
		record.OnsiteVisitRequired = answer
		step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleMortgageValuation)
		if step.Status != StatusCompleted {
			t.Fatalf("answer %q: status = %q, want %q", answer, step.Status, StatusCompleted)
		}
	}
}

func TestOnsiteVisitInsertsAlignedPlaceholder(t *testing.T) {
	t.Parallel()

	record := progress.Record{
		MortgageDecision:    progress.DecisionMortgage,
		MortgageProvider:    "Halifax",
		OnsiteVisitRequired: progress.AnswerYes,
	}
	buyer, seller := DeriveTracks(record, postOffer())

	_, sellerIdx := findStep(t, seller, TitleScheduleValuationVisit)
	if !buyer[sellerIdx].Placeholder {
		t.Fatalf("buyer side at row %d should be a placeholder, got %+v", sellerIdx, buyer[sellerIdx])
	}
}

func TestMortgageOfferPresence(t *testing.T) {
	t.Parallel()

	base := progress.Record{MortgageDecision: progress.DecisionMortgage, MortgageProvider: "Halifax"}

	noVisit := base
	noVisit.OnsiteVisitRequired = progress.AnswerNo
	if !hasStep(DeriveBuyer(noVisit, postOffer()), TitleMortgageOffer) {
		t.Fatal("expected mortgage offer step after desktop valuation")
	}

	visitDone := base
	visitDone.OnsiteVisitRequired = progress.AnswerYes
	visitDone.MortgageValuationVisitCompleted = true
	if !hasStep(DeriveBuyer(visitDone, postOffer()), TitleMortgageOffer) {
		t.Fatal("expected mortgage offer step after completed valuation visit")
	}

	visitPending := base
	visitPending.OnsiteVisitRequired = progress.AnswerYes
	if hasStep(DeriveBuyer(visitPending, postOffer()), TitleMortgageOffer) {
		t.Fatal("mortgage offer step should wait for the valuation visit")
	}
}

func TestMortgageOfferCompletesOnLocalAttachment(t *testing.T) {
	t.Parallel()

	record := progress.Record{
		MortgageDecision:    progress.DecisionMortgage,
		MortgageProvider:    "Halifax",
		OnsiteVisitRequired: progress.AnswerNo,
	}
	step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleMortgageOffer)
	if step.Status != StatusCurrent {
		t.Fatalf("without attachment: status = %q, want %q", step.Status, StatusCurrent)
	}

	in := postOffer()
	in.OfferDocumentAttached = true
	step, _ = findStep(t, DeriveBuyer(record, in), TitleMortgageOffer)
	if step.Status != StatusCompleted {
		t.Fatalf("with attachment: status = %q, want %q", step.Status, StatusCompleted)
	}
}

func TestPropertySurveyThreeWayStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record progress.Record
		want   Status
	}{
		{"unset", progress.Record{}, StatusPending},
		{"declined", progress.Record{PropertySurveyDecision: progress.AnswerNo}, StatusCompleted},
		{"commissioned without surveyor", progress.Record{PropertySurveyDecision: progress.AnswerYes}, StatusCurrent},
		{
			"commissioned with partial surveyor",
			progress.Record{PropertySurveyDecision: progress.AnswerYes, SurveyorName: "Alice", SurveyorEmail: "a@b.com"},
			StatusCurrent,
		},
		{
			"commissioned with full surveyor",
			progress.Record{
				PropertySurveyDecision: progress.AnswerYes,
				SurveyorName:           "Alice",
				SurveyorEmail:          "a@b.com",
				SurveyorPhone:          "0700000000",
			},
			StatusCompleted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			step, _ := findStep(t, DeriveBuyer(tc.record, postOffer()), TitlePropertySurvey)
			if step.Status != tc.want {
				t.Fatalf("status = %q, want %q", step.Status, tc.want)
			}
		})
	}
}

func TestSurveyorDetailsInsertScheduleSurveyRow(t *testing.T) {
	t.Parallel()

	record := progress.Record{
		PropertySurveyDecision: progress.AnswerYes,
		SurveyorName:           "Alice",
		SurveyorEmail:          "a@b.com",
		SurveyorPhone:          "0700000000",
	}
	buyer, seller := DeriveTracks(record, postOffer())

	_, idx := findStep(t, seller, TitleScheduleSurvey)
	if !buyer[idx].Placeholder {
		t.Fatalf("buyer side at schedule-survey row should be a placeholder, got %+v", buyer[idx])
	}
}

func TestApproveSurveyResultsPresence(t *testing.T) {
	t.Parallel()

	if hasStep(DeriveBuyer(progress.Record{}, postOffer()), TitleApproveSurveyResults) {
		t.Fatal("approve step should wait for the survey visit")
	}

	record := progress.Record{SurveyVisitCompleted: true}
	step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleApproveSurveyResults)
	if step.Status != StatusCurrent {
		t.Fatalf("status = %q, want %q", step.Status, StatusCurrent)
	}

	record.SurveyApproval = progress.ApprovalApproved
	step, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleApproveSurveyResults)
	if step.Status != StatusCompleted {
		t.Fatalf("approved: status = %q, want %q", step.Status, StatusCompleted)
	}

	record.SurveyApproval = progress.ApprovalRejected
	step, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleApproveSurveyResults)
	if step.Status != StatusCurrent {
		t.Fatalf("rejected: status = %q, want %q", step.Status, StatusCurrent)
	}
}

func TestConveyancingStatusPerSide(t *testing.T) {
	t.Parallel()

	record := progress.Record{BuyerSolicitorName: "Smith & Co"}
	buyerStep, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleConveyancing)
	if buyerStep.Status != StatusCurrent {
		t.Fatalf("buyer status = %q, want %q", buyerStep.Status, StatusCurrent)
	}
	sellerStep, _ := findStep(t, DeriveSeller(record, postOffer()), TitleConveyancing)
	if sellerStep.Status != StatusPending {
		t.Fatalf("seller status = %q, want %q", sellerStep.Status, StatusPending)
	}

	record.SellerSolicitorName = "Jones LLP"
	buyerStep, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleConveyancing)
	sellerStep, _ = findStep(t, DeriveSeller(record, postOffer()), TitleConveyancing)
	if buyerStep.Status != StatusCompleted || sellerStep.Status != StatusCompleted {
		t.Fatalf("both instructed: buyer %q seller %q", buyerStep.Status, sellerStep.Status)
	}
}

func TestClosingStepsJointConfirmation(t *testing.T) {
	t.Parallel()

	record := progress.Record{}
	step, _ := findStep(t, DeriveBuyer(record, postOffer()), TitleFinalChecks)
	if step.Status != StatusPending {
		t.Fatalf("no confirmations: status = %q, want %q", step.Status, StatusPending)
	}

	record.BuyerFinalChecksConfirmed = true
	step, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleFinalChecks)
	if step.Status != StatusCurrent {
		t.Fatalf("one confirmation: status = %q, want %q", step.Status, StatusCurrent)
	}

	record.SellerFinalChecksConfirmed = true
	step, _ = findStep(t, DeriveBuyer(record, postOffer()), TitleFinalChecks)
	if step.Status != StatusCompleted {
		t.Fatalf("both confirmations: status = %q, want %q", step.Status, StatusCompleted)
	}
}

func TestTracksStayAligned(t *testing.T) {
	t.Parallel()

	records := []progress.Record{
		{},
		{MortgageDecision: progress.DecisionCash},
		{MortgageDecision: progress.DecisionMortgage, MortgageProvider: "Halifax", OnsiteVisitRequired: progress.AnswerYes},
		{
			MortgageDecision:       progress.DecisionMortgage,
			MortgageProvider:       "Halifax",
			OnsiteVisitRequired:    progress.AnswerNo,
			PropertySurveyDecision: progress.AnswerYes,
			SurveyorName:           "Alice",
			SurveyorEmail:          "a@b.com",
			SurveyorPhone:          "0700000000",
			SurveyVisitCompleted:   true,
		},
	}
	for _, record := range records {
		buyer, seller := DeriveTracks(record, postOffer())
		if len(buyer) != len(seller) {
			t.Fatalf("track lengths differ: buyer %d seller %d for %+v", len(buyer), len(seller), record)
		}
		for i := range buyer {
			if buyer[i].Placeholder && seller[i].Placeholder {
				t.Fatalf("row %d is a double placeholder for %+v", i, record)
			}
		}
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	t.Parallel()

	record := progress.Record{
		MortgageDecision:       progress.DecisionMortgage,
		MortgageProvider:       "Halifax",
		OnsiteVisitRequired:    progress.AnswerYes,
		PropertySurveyDecision: progress.AnswerYes,
		SurveyorName:           "Alice",
		SurveyorEmail:          "a@b.com",
		SurveyorPhone:          "0700000000",
		BuyerSolicitorName:     "Smith & Co",
	}
	first := DeriveBuyer(record, postOffer())
	second := DeriveBuyer(record, postOffer())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("deriving twice from the same record produced different tracks")
	}

	firstSeller := DeriveSeller(record, postOffer())
	secondSeller := DeriveSeller(record, postOffer())
	if !reflect.DeepEqual(firstSeller, secondSeller) {
		t.Fatal("deriving twice produced different seller tracks")
	}
}

func TestPreOfferChecklistsReturnedWithoutAcceptedOffer(t *testing.T) {
	t.Parallel()

	buyer := DeriveBuyer(progress.Record{}, Input{})
	if len(buyer) != 6 || buyer[0].Title != "Complete Profile" {
		t.Fatalf("unexpected buyer pre-offer checklist: %+v", buyer)
	}
	seller := DeriveSeller(progress.Record{}, Input{})
	if len(seller) != 8 || seller[3].Title != "Property Listed" {
		t.Fatalf("unexpected seller pre-offer checklist: %+v", seller)
	}
	if seller[3].Status != StatusCurrent {
		t.Fatalf("property listed status = %q, want %q", seller[3].Status, StatusCurrent)
	}
}
