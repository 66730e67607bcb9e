package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTenantID    = "tenant_id"
	FieldTenantName  = "tenant_name"
	FieldUserID      = "user_id"
	FieldEmail       = "email"
	FieldRole        = "role"
	FieldExpenseID   = "expense_id"
	FieldBudgetID    = "budget_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldMonth       = "month"
	FieldRoute       = "route"
	FieldDecision    = "decision"
	FieldBackend     = "backend"
	FieldKey         = "key"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentSession = "session"
	ComponentGuard   = "guard"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentEvents  = "events"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)
