package timeline

import (
	"testing"

	"github.com/maisonhq/maison/internal/progress"
)

func TestRowsPadShorterTrack(t *testing.T) {
	t.Parallel()

	buyer := []Step{{Title: TitleMortgageApplication, Status: StatusCurrent}}
	rows := Rows(buyer, nil)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rows[0].Seller.Placeholder {
		t.Fatalf("seller side should be padded with a placeholder, got %+v", rows[0].Seller)
	}
}

func TestDotStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		buyer  Status
		seller Status
		want   Status
	}{
		{"both pending", StatusPending, StatusPending, StatusPending},
		{"buyer current", StatusCurrent, StatusPending, StatusCurrent},
		{"seller completed wins over current", StatusCurrent, StatusCompleted, StatusCompleted},
		{"buyer completed", StatusCompleted, StatusPending, StatusCompleted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			row := Row{Buyer: Step{Status: tc.buyer}, Seller: Step{Status: tc.seller}}
			if got := row.DotStatus(); got != tc.want {
				t.Fatalf("DotStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCanClickRejectsPlaceholdersAndCompleted(t *testing.T) {
	t.Parallel()

	track := []Step{
		{Title: TitleMortgageApplication, Status: StatusCompleted},
		placeholder(),
		{Title: TitlePropertySurvey, Status: StatusCurrent},
	}
	if CanClick(track, 0) {
		t.Fatal("completed step should not be clickable")
	}
	if CanClick(track, 1) {
		t.Fatal("placeholder should not be clickable")
	}
	if !CanClick(track, 2) {
		t.Fatal("current non-closing step should be clickable")
	}
	if CanClick(track, -1) || CanClick(track, len(track)) {
		t.Fatal("out-of-range index should not be clickable")
	}
}

func TestCanClickGatesClosingSteps(t *testing.T) {
	t.Parallel()

	// A pending survey upstream keeps Final Checks locked even though the
	// step itself reads as current from the other side's confirmation.
	record := progress.Record{
		MortgageDecision:           progress.DecisionCash,
		PropertySurveyDecision:     progress.AnswerYes,
		SellerFinalChecksConfirmed: true,
	}
	track := DeriveBuyer(record, postOffer())
	_, idx := findStep(t, track, TitleFinalChecks)
	if CanClick(track, idx) {
		t.Fatal("final checks should stay locked while the survey is outstanding")
	}

	// Completing everything upstream unlocks it.
	record.PropertySurveyDecision = progress.AnswerNo
	record.BuyerSolicitorName = "Smith & Co"
	record.BuyerSolicitorContact = "smith@example.com"
	record.SellerSolicitorName = "Jones LLP"
	in := postOffer()
	in.OfferDocumentAttached = true
	track = DeriveBuyer(record, in)
	_, idx = findStep(t, track, TitleFinalChecks)
	if !CanClick(track, idx) {
		t.Fatal("final checks should unlock once every earlier step is completed")
	}
}

func TestCanClickExchangeWaitsForFinalChecks(t *testing.T) {
	t.Parallel()

	record := progress.Record{
		MortgageDecision:                 progress.DecisionCash,
		PropertySurveyDecision:           progress.AnswerNo,
		BuyerSolicitorName:               "Smith & Co",
		SellerSolicitorName:              "Jones LLP",
		BuyerFinalChecksConfirmed:        true,
		SellerExchangeContractsConfirmed: true,
	}
	in := postOffer()
	in.OfferDocumentAttached = true
	track := DeriveBuyer(record, in)

	_, idx := findStep(t, track, TitleExchangeContracts)
	if CanClick(track, idx) {
		t.Fatal("exchange should stay locked until both sides confirm final checks")
	}

	record.SellerFinalChecksConfirmed = true
	track = DeriveBuyer(record, in)
	_, idx = findStep(t, track, TitleExchangeContracts)
	if !CanClick(track, idx) {
		t.Fatal("exchange should unlock once final checks completes")
	}
}
