package apperrors

var (
	// Connection graph conflicts, expected outcomes, never logged as system errors
	ErrAlreadyConnected   = New(CodeAlreadyConnected, "users are already connected")
	ErrAlreadyPending     = New(CodeAlreadyPending, "a pending connection request already exists between these users")
	ErrBlocked            = New(CodeBlocked, "connection is blocked")
	ErrLimitReached       = New(CodeLimitReached, "connection limit reached")
	ErrConnectionNotFound = New(CodeNotFound, "connection not found")
	ErrNotAddressee       = New(CodeUnauthorized, "only the addressee can act on this request")
	ErrNotPending         = New(CodeInvalidStatus, "connection request is not pending")
	ErrSelfConnection     = New(CodeInvalidArgument, "cannot connect with yourself")
	ErrInviteNotFound     = New(CodeNotFound, "invite code is invalid or does not exist")

	// Distribution pipeline
	ErrNoRecipients  = New(CodeNoRecipients, "no connected friends to send to")
	ErrRateLimited   = New(CodeRateLimited, "too many requests, slow down")
	ErrMediaNotFound = New(CodeNotFound, "media item not found")
	ErrNotSender     = New(CodeUnauthorized, "only the sender can delete this media item")
)
