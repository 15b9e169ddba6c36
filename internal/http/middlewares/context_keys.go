package middlewares

// gin context keys shared by middleware and handlers.
const (
	CtxRequestID = "request_id"

	// Set by RequireSession: the user id from the verified token claims,
	// and the resolved user.User (absent when the id no longer exists).
	CtxSessionUserID = "session.userID"
	CtxSessionUser   = "session.user"
)
