package types

import "time"

// User roles.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleAuthor        = "author"
	RoleContributor   = "contributor"
	RoleSubscriber    = "subscriber"
)

// User is an account record.
type User struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Roles       []string  `json:"roles"`
	Registered  time.Time `json:"registered"`
}

// Validate checks the fields a store requires before persisting a user.
func (u *User) Validate() error {
	if u.Login == "" {
		return ErrInvalidData
	}
	return nil
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
