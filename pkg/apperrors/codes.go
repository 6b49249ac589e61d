package apperrors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInvalidStatus    Code = "INVALID_STATUS"
	CodeAlreadyConnected Code = "ALREADY_CONNECTED"
	CodeAlreadyPending   Code = "ALREADY_PENDING"
	CodeBlocked          Code = "BLOCKED"
	CodeLimitReached     Code = "LIMIT_REACHED"
	CodeNoRecipients     Code = "NO_RECIPIENTS"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeUnavailable      Code = "UNAVAILABLE"
)
