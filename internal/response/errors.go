package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidYear    ErrCode = "INVALID_YEAR"

	// ─── Calculation ───────────────────────────────────────────────────
	ErrInvalidTime       ErrCode = "INVALID_TIME"
	ErrClassNotFound     ErrCode = "CLASS_NOT_FOUND"
	ErrInvalidConversion ErrCode = "INVALID_CONVERSION"
	ErrNoLastUsed        ErrCode = "NO_LAST_USED"

	// ─── Indices ───────────────────────────────────────────────────────
	ErrIndexNotFound ErrCode = "INDEX_NOT_FOUND"
	ErrIndexInvalid  ErrCode = "INDEX_INVALID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Some fields are invalid."
	case ErrInvalidPayload:
		return "The request body could not be read."
	case ErrInvalidYear:
		return "The year must be a number."

	// ─── Calculation ───────────────────────────────────────────────────
	case ErrInvalidTime:
		return "Enter a time like 1:05.123, 65.123 or 65."
	case ErrClassNotFound:
		return "That class does not exist in the selected index."
	case ErrInvalidConversion:
		return "The time cannot be converted between these classes."
	case ErrNoLastUsed:
		return "No previous calculation was saved for this client."

	// ─── Indices ───────────────────────────────────────────────────────
	case ErrIndexNotFound:
		return "No PAX index exists for that year and event type."
	case ErrIndexInvalid:
		return "The PAX index failed validation."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Something went wrong on our side."
	case ErrUnavailable:
		return "A backing service is unavailable."

	default:
		return "An unknown error occurred."
	}
}
