package progress

import (
	"strings"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
)

// Closing step names accepted by ConfirmUpdate. They match the titles the
// timeline renders for the jointly-confirmed steps.
const (
	StepFinalChecks       = "Final Checks"
	StepExchangeContracts = "Exchange Contracts"
	StepCompletion        = "Completion"
)

// ConfirmUpdate builds the update that records one side's confirmation of a
// closing step. Each step maps to exactly one flag per role, so a repeated
// confirmation is a no-op overwrite.
func ConfirmUpdate(role Role, step string) (Update, error) {
	var u Update
	switch strings.TrimSpace(step) {
	case StepFinalChecks:
		if role == RoleSeller {
			u.SellerFinalChecksConfirmed = Bool(true)
		} else {
			u.BuyerFinalChecksConfirmed = Bool(true)
		}
	case StepExchangeContracts:
		if role == RoleSeller {
			u.SellerExchangeContractsConfirmed = Bool(true)
		} else {
			u.BuyerExchangeContractsConfirmed = Bool(true)
		}
	case StepCompletion:
		if role == RoleSeller {
			u.SellerCompletionConfirmed = Bool(true)
		} else {
			u.BuyerCompletionConfirmed = Bool(true)
		}
	default:
		return Update{}, apperrors.WithMetadata(
			apperrors.CodeProgressStepUnknown,
			"step cannot be confirmed",
			map[string]string{"Step": step},
		)
	}
	return u, nil
}
