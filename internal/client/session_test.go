package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/timeline"
)

func TestSessionRefreshAdoptsServerRecord(t *testing.T) {
	t.Parallel()

	cs := newCountingServer(t)
	cs.record = progress.Record{MortgageDecision: progress.DecisionCash}

	session := NewSession(cs.client(), "user-1", "txn-1", progress.RoleBuyer)
	if _, hydrated := session.Record(); hydrated {
		t.Fatal("session should start unhydrated")
	}
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	record, hydrated := session.Record()
	if !hydrated {
		t.Fatal("session should be hydrated after refresh")
	}
	if record.MortgageDecision != progress.DecisionCash {
		t.Fatalf("mortgage_decision = %q", record.MortgageDecision)
	}
}

func TestSessionFailedRefreshKeepsHydratedState(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	record := progress.Record{MortgageProvider: "Halifax"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "storage down", http.StatusInternalServerError)
			return
		}
		httpapi.WriteJSON(w, http.StatusOK, record)
	}))
	t.Cleanup(server.Close)

	session := NewSession(New(server.URL, StaticToken("token")), "user-1", "txn-1", progress.RoleBuyer)
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	fail.Store(true)
	if err := session.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}
	got, hydrated := session.Record()
	if !hydrated {
		t.Fatal("failed refresh must not drop hydration")
	}
	if got.MortgageProvider != "Halifax" {
		t.Fatalf("mortgage_provider = %q, state lost", got.MortgageProvider)
	}
}

func TestSessionSubmitAppliesOptimisticallyOnFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	session := NewSession(New(server.URL, StaticToken("token")), "user-1", "txn-1", progress.RoleBuyer)
	err := session.Submit(context.Background(), progress.Update{
		MortgageDecision: progress.String(progress.DecisionMortgage),
	})
	if err == nil {
		t.Fatal("expected submit failure")
	}
	record, _ := session.Record()
	if record.MortgageDecision != progress.DecisionMortgage {
		t.Fatalf("optimistic write lost: %+v", record)
	}
}

func TestSessionRefreshReconcilesServerWins(t *testing.T) {
	t.Parallel()

	cs := newCountingServer(t)
	session := NewSession(cs.client(), "user-1", "txn-1", progress.RoleBuyer)

	// Local optimistic state diverges when the server rejects the write.
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage down", http.StatusInternalServerError)
	}))
	t.Cleanup(badServer.Close)
	divergent := NewSession(New(badServer.URL, StaticToken("token")), "user-1", "txn-1", progress.RoleBuyer)
	_ = divergent.Submit(context.Background(), progress.Update{MortgageProvider: progress.String("Nationwide")})

	// After a successful fetch the server copy replaces the local one.
	cs.record = progress.Record{MortgageProvider: "Halifax"}
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	record, _ := session.Record()
	if record.MortgageProvider != "Halifax" {
		t.Fatalf("mortgage_provider = %q, want server copy", record.MortgageProvider)
	}
}

// closingReadyRecord has every buyer step before Final Checks completed.
func closingReadyRecord() progress.Record {
	return progress.Record{
		MortgageDecision:       progress.DecisionCash,
		PropertySurveyDecision: progress.AnswerNo,
		BuyerSolicitorName:     "Reid & Co",
		BuyerSolicitorContact:  "reid@example.com",
		SellerSolicitorName:    "Marsh LLP",
		SellerSolicitorContact: "marsh@example.com",
	}
}

func TestSessionConfirmSetsOwnRoleFlag(t *testing.T) {
	t.Parallel()

	cs := newCountingServer(t)
	cs.record = closingReadyRecord()

	session := NewSession(cs.client(), "user-1", "txn-1", progress.RoleBuyer)
	session.SetOfferAccepted(true)
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := session.Confirm(context.Background(), progress.StepFinalChecks); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	record, _ := session.Record()
	if !record.BuyerFinalChecksConfirmed {
		t.Fatalf("confirmation not recorded: %+v", record)
	}
}

func TestSessionConfirmRejectsLockedStep(t *testing.T) {
	t.Parallel()

	cs := newCountingServer(t)
	cs.record = closingReadyRecord()

	session := NewSession(cs.client(), "user-1", "txn-1", progress.RoleBuyer)
	session.SetOfferAccepted(true)
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := cs.requests.Load()

	err := session.Confirm(context.Background(), progress.StepExchangeContracts)
	if err == nil {
		t.Fatal("expected locked step error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeStepNotUnlocked {
		t.Fatalf("code = %q, want %q", code, apperrors.CodeStepNotUnlocked)
	}
	if got := cs.requests.Load(); got != before {
		t.Fatalf("locked confirm reached the network: %d requests", got-before)
	}
	record, _ := session.Record()
	if record.BuyerExchangeContractsConfirmed {
		t.Fatal("locked confirm must not apply optimistically")
	}
}

func TestSessionTimelineUsesLocalAttachment(t *testing.T) {
	t.Parallel()

	cs := newCountingServer(t)
	cs.record = progress.Record{
		MortgageDecision:    progress.DecisionMortgage,
		MortgageProvider:    "Halifax",
		OnsiteVisitRequired: progress.AnswerNo,
	}

	session := NewSession(cs.client(), "user-1", "txn-1", progress.RoleBuyer)
	session.SetOfferAccepted(true)
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	buyer, _ := session.Timeline()
	offer, _ := findStep(t, buyer, timeline.TitleMortgageOffer)
	if offer.Status != timeline.StatusCurrent {
		t.Fatalf("before attachment: status = %q", offer.Status)
	}

	if err := session.AttachOfferDocument(""); err == nil {
		t.Fatal("expected missing document error")
	}
	if err := session.AttachOfferDocument("offer.pdf"); err != nil {
		t.Fatalf("attach document: %v", err)
	}
	buyer, _ = session.Timeline()
	offer, _ = findStep(t, buyer, timeline.TitleMortgageOffer)
	if offer.Status != timeline.StatusCompleted {
		t.Fatalf("after attachment: status = %q", offer.Status)
	}
}

func findStep(t *testing.T, track []timeline.Step, title string) (timeline.Step, int) {
	t.Helper()
	for i, step := range track {
		if step.Title == title {
			return step, i
		}
	}
	t.Fatalf("step %q not found", title)
	return timeline.Step{}, -1
}
