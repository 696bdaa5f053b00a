package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID      = "user_id"
	FieldUserEmail   = "user_email"
	FieldRole        = "role"
	FieldCompanyID   = "company_id"
	FieldEntity      = "entity"
	FieldEntityID    = "entity_id"
	FieldAmountCents = "amount_cents"
	FieldCategoryID  = "category_id"
	FieldProvider    = "provider"
	FieldBackend     = "backend"
)

// Components defines standard component names.
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentIdentity    = "identity"
	ComponentFinance     = "finance"
	ComponentActivity    = "activity"
	ComponentIntegration = "integration"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSync     = "sync"
	OpExport   = "export"
	OpLogin    = "login"
	OpRegister = "register"
	OpInvite   = "invite"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
