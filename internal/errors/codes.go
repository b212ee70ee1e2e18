package errors

// Error codes returned in the "code" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on the code, not the message.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthAccountInactive    = "AUTH_ACCOUNT_INACTIVE"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound           = "REVIEW_NOT_FOUND"
	ReviewInvalidRating      = "REVIEW_INVALID_RATING"
	ReviewInvalidReviewable  = "REVIEW_INVALID_REVIEWABLE"
	ReviewPublishedImmutable = "REVIEW_PUBLISHED_IMMUTABLE"
	ReviewNothingToUpdate    = "REVIEW_NOTHING_TO_UPDATE"
	ReviewPublishRejected    = "REVIEW_PUBLISH_REJECTED"
	ReviewInvalidVote        = "REVIEW_INVALID_VOTE"
	ReviewEmptyReply         = "REVIEW_EMPTY_REPLY"

	// ==================== Moderation (MODERATION_) ====================
	ModerationInvalidAction = "MODERATION_INVALID_ACTION"
	ModerationEmptyIDs      = "MODERATION_EMPTY_IDS"
	ModerationNoValidIDs    = "MODERATION_NO_VALID_IDS"

	// ==================== Audit (AUDIT_) ====================
	AuditLogNotFound      = "AUDIT_LOG_NOT_FOUND"
	AuditInvalidDate      = "AUDIT_INVALID_DATE"
	AuditInvalidExportFmt = "AUDIT_INVALID_EXPORT_FORMAT"

	// ==================== Rate limiting (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
