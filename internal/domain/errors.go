package domain

// APIError is an RFC 7807 problem document. Allowed is set on invalid
// transition responses so clients can offer the legal next stages.
type APIError struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Status  int               `json:"status"`
	Detail  string            `json:"detail,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Allowed []SaleStage       `json:"allowed,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Problem types
const (
	ErrorTypeValidation        = "validation_error"
	ErrorTypeBadRequest        = "bad_request"
	ErrorTypeUnauthorized      = "unauthorized"
	ErrorTypeForbidden         = "forbidden"
	ErrorTypeNotFound          = "not_found"
	ErrorTypeConflict          = "conflict"
	ErrorTypeInvalidTransition = "invalid_transition"
	ErrorTypeUnprocessable     = "unprocessable_entity"
	ErrorTypeRateLimited       = "rate_limited"
	ErrorTypeInternal          = "internal_error"
)

// validationMessages covers validator tags without a parameterised message
var validationMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Must be a valid UUID",
	"numeric":  "Must be a numeric value",
	"dive":     "One or more entries are invalid",
}

// GetValidationMessage returns a human-readable message for a validator tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
