package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch lists the updatable fields as optionals; nil means "leave as is".
type UserPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Role    *string `json:"role"`
	Blocked *bool   `json:"blocked"`
}

// Apply merges a patch into a user, touching only the fields that are set.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Blocked != nil {
		u.Blocked = *p.Blocked
	}
}

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string
	Role   string
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
