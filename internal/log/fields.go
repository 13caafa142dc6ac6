package log

// Field names shared by every component.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldBytes       = "bytes"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOwner       = "owner"
	FieldWindow      = "window"
	FieldFormat      = "format"
	FieldRecordCount = "records"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentImport    = "import"
)

const (
	OpSummary  = "summary"
	OpExport   = "export"
	OpYears    = "years"
	OpEnqueue  = "enqueue"
	OpImport   = "import"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields builds key/value pairs for slog in insertion order.
type Fields []any

func NewFields() Fields {
	return make(Fields, 0, 8)
}

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

func (f Fields) WithOperation(op string) Fields {
	return append(f, FieldOperation, op)
}

func (f Fields) WithReport(owner, window string) Fields {
	return append(f, FieldOwner, owner, FieldWindow, window)
}

func (f Fields) WithHTTPRequest(method, path, query string) Fields {
	return append(f, FieldMethod, method, FieldPath, path, FieldQuery, query)
}

func (f Fields) WithHTTPResponse(status int, durationMs int64, bytes int) Fields {
	return append(f, FieldStatusCode, status, FieldDuration, durationMs, FieldBytes, bytes)
}
