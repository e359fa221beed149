package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrProctorOnly   ErrCode = "PROCTOR_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Admission ─────────────────────────────────────────────────────
	ErrExamNotFound      ErrCode = "EXAM_NOT_FOUND"
	ErrExamNotPublished  ErrCode = "EXAM_NOT_PUBLISHED"
	ErrInviteRequired    ErrCode = "INVITE_TOKEN_REQUIRED"
	ErrInviteInvalid     ErrCode = "INVITE_TOKEN_INVALID"
	ErrIPNotAllowed      ErrCode = "IP_NOT_ALLOWED"
	ErrOutsideExamWindow ErrCode = "OUTSIDE_EXAM_WINDOW"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrConcurrentSession  ErrCode = "CONCURRENT_SESSION"
	ErrSubmissionNotFound ErrCode = "SUBMISSION_NOT_FOUND"
	ErrSubmissionClosed   ErrCode = "SUBMISSION_CLOSED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrProctorOnly:
		return "This resource is restricted to proctors."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Admission ─────────────────────────────────────────────────────
	case ErrExamNotFound:
		return "Exam not found."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrInviteRequired:
		return "An invite token is required to access this exam."
	case ErrInviteInvalid:
		return "The invite token is invalid, expired, revoked, or used up."
	case ErrIPNotAllowed:
		return "Access denied: your IP address is not on the allow-list."
	case ErrOutsideExamWindow:
		return "The exam is not open at this time."

	// ─── Sessions ──────────────────────────────────────────────────────
	case ErrConcurrentSession:
		return "Another device already holds an active session for this exam."
	case ErrSubmissionNotFound:
		return "No matching in-progress submission was found."
	case ErrSubmissionClosed:
		return "This exam session has already ended and cannot be restarted."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
