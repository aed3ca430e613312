package model

// Privilege codes carried in the bearer token and checked per route.
const (
	PrivProductView       = "product:view"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivProductDelete     = "product:delete"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivDashboardView     = "dashboard:view"
)

// AllPrivileges is granted to tokens minted for operators.
var AllPrivileges = []string{
	PrivProductView,
	PrivProductCreate,
	PrivProductUpdate,
	PrivProductDelete,
	PrivTransactionView,
	PrivTransactionCreate,
	PrivDashboardView,
}

// Actor is the already-authenticated caller of a mutation.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
