package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleDriver   Role = "driver"
	RoleReporter Role = "reporter"
)

// Actor is the authenticated caller handed to every mutating operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleOperator
}

func (a Actor) IsDriver(driverID string) bool {
	return a.Role == RoleDriver && a.ID != "" && a.ID == driverID
}

// System is the actor used by background workers.
var System = Actor{ID: "system", Name: "dispatch", Role: RoleOperator}
