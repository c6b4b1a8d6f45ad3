// Package errors provides structured error handling for Maison services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeBadRequest represents a malformed or unreadable request.
	CodeBadRequest Code = "BAD_REQUEST"

	// Progress errors
	CodeProgressUserIDRequired        Code = "PROGRESS_USER_ID_REQUIRED"
	CodeProgressTransactionIDRequired Code = "PROGRESS_TRANSACTION_ID_REQUIRED"
	CodeProgressFieldNotOwned         Code = "PROGRESS_FIELD_NOT_OWNED"
	CodeProgressStepUnknown           Code = "PROGRESS_STEP_UNKNOWN"
	CodeProgressInvalidRole           Code = "PROGRESS_INVALID_ROLE"

	// Step form errors
	CodeSurveyorEmailInvalid   Code = "SURVEYOR_EMAIL_INVALID"
	CodeFormFieldRequired      Code = "FORM_FIELD_REQUIRED"
	CodeFormChoiceInvalid      Code = "FORM_CHOICE_INVALID"
	CodeStepNotUnlocked        Code = "STEP_NOT_UNLOCKED"
	CodeOfferDocumentMissing   Code = "OFFER_DOCUMENT_MISSING"

	// Auth errors
	CodeAuthTokenMissing  Code = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid  Code = "AUTH_TOKEN_INVALID"
	CodeAuthUserMismatch  Code = "AUTH_USER_MISMATCH"

	// Listing errors
	CodeListingTitleEmpty   Code = "LISTING_TITLE_EMPTY"
	CodeListingPriceInvalid Code = "LISTING_PRICE_INVALID"

	// Viewing availability errors
	CodeSlotTimeInvalid Code = "SLOT_TIME_INVALID"
	CodeSlotOverlap     Code = "SLOT_OVERLAP"

	// Chat errors
	CodeChatMessageEmpty    Code = "CHAT_MESSAGE_EMPTY"
	CodeChatUpstreamFailure Code = "CHAT_UPSTREAM_FAILURE"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeBadRequest,
		CodeProgressUserIDRequired,
		CodeProgressTransactionIDRequired,
		CodeProgressStepUnknown,
		CodeProgressInvalidRole,
		CodeSurveyorEmailInvalid,
		CodeFormFieldRequired,
		CodeFormChoiceInvalid,
		CodeOfferDocumentMissing,
		CodeListingTitleEmpty,
		CodeListingPriceInvalid,
		CodeSlotTimeInvalid,
		CodeChatMessageEmpty:
		return http.StatusBadRequest

	// Unauthorized - missing or bad credentials
	case CodeAuthTokenMissing,
		CodeAuthTokenInvalid:
		return http.StatusUnauthorized

	// Forbidden - authenticated but not allowed
	case CodeAuthUserMismatch,
		CodeProgressFieldNotOwned:
		return http.StatusForbidden

	// Conflict - state doesn't allow operation
	case CodeSlotOverlap,
		CodeStepNotUnlocked,
		CodeAlreadyExists:
		return http.StatusConflict

	case CodeNotFound:
		return http.StatusNotFound

	case CodeChatUpstreamFailure:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
