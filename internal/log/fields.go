package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldExpenseID   = "expense_id"
	FieldExpenseName = "expense_name"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldCount       = "count"
	FieldRangeStart  = "range_start"
	FieldRangeEnd    = "range_end"
	FieldBackend     = "backend"
)

// Components
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentExpense  = "expense"
	ComponentStorage  = "storage"
	ComponentBackend  = "backend"
	ComponentTemplate = "template"
)

// Operations
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpFilter   = "filter"
	OpReset    = "reset"
	OpValidate = "validate"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithExpense adds the identifying fields of an expense.
func (f LogFields) WithExpense(id, name, amount, date string) LogFields {
	f[FieldExpenseID] = id
	f[FieldExpenseName] = name
	f[FieldAmount] = amount
	f[FieldDate] = date
	return f
}

// WithRange adds filter bounds.
func (f LogFields) WithRange(start, end string) LogFields {
	f[FieldRangeStart] = start
	f[FieldRangeEnd] = end
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
