package models

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	Role         UserRole
}
