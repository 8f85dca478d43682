package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAcademy  UserRole = "academy"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Name     string   `db:"name"`
	Email    string   `db:"email"`
	Phone    *string  `db:"phone"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}
