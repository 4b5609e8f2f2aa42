package middlewares

// gin context keys shared by the middleware chain and the handlers.
const (
	CtxRequestID = "request_id"
	CtxClaims    = "auth.claims"
)
