package model

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleOperator UserRole = "OPERATOR"
)

type Principal struct {
	UserID string
	Email  string
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsOperator() bool {
	return p.Role == UserRoleOperator
}

// CanManagePrices reports whether the principal may refresh the price table.
func (p Principal) CanManagePrices() bool {
	return p.IsAdmin() || p.IsOperator()
}

// CanViewBookings reports whether the principal may read the booking log.
func (p Principal) CanViewBookings() bool {
	return p.IsAdmin() || p.IsOperator()
}
