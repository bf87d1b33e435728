package apierror

// Error type URIs following the urn:vital:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:vital:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:vital:error:not_found"

	// TypeConflict indicates a resource conflict (409)
	TypeConflict = "urn:vital:error:conflict"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:vital:error:unauthorized"

	// TypeForbidden indicates insufficient permissions (403)
	TypeForbidden = "urn:vital:error:forbidden"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:vital:error:internal"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:vital:error:bad_request"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation   = "Validation Error"
	TitleNotFound     = "Resource Not Found"
	TitleConflict     = "Resource Conflict"
	TitleUnauthorized = "Authentication Required"
	TitleForbidden    = "Permission Denied"
	TitleInternal     = "Internal Server Error"
	TitleBadRequest   = "Bad Request"
)
