package cnst

// Spreadsheet boolean values. Tables store flags as YES/NO, never true/false.
const (
	Yes = "YES"
	No  = "NO"
)

// Deal lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
	StatusApproved  = "APPROVED"
	StatusOpen      = "OPEN"
	StatusCompleted = "COMPLETED"
	StatusClosed    = "CLOSED"
)

// Role names as stored in the account table. Comparison is case-insensitive;
// these are the canonical lowered forms.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
	RoleClient   = "client"
)
