package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTxID        = "transaction_id"
	FieldTxKind      = "transaction_kind"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentGateway   = "gateway"
	ComponentRemote    = "remote"
	ComponentLocal     = "localstore"
	ComponentSession   = "session"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
	OpLogin  = "login"
	OpLogout = "logout"
)
