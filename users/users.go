package users

import (
	"fmt"
	"strings"
	"time"
)

// User is the profile record of the signed-in account. It is the domain form:
// every field carries a concrete value. The wire form (api.Profile) uses
// pointers to tell an omitted field apart from an empty one; by the time a
// record becomes a users.User that distinction has been resolved.
type User struct {
	ID          string    `json:"id"`                     // Unique identifier for the user
	Email       string    `json:"email"`                  // User's email address
	Username    string    `json:"username"`               // Unique username
	FirstName   string    `json:"first_name"`             // First name, may legitimately be empty
	LastName    string    `json:"last_name"`              // Last name, may legitimately be empty
	AvatarURL   string    `json:"avatar_url,omitempty"`   // Profile picture URL
	Active      bool      `json:"active"`                 // Has the account been confirmed
	LastUpdated time.Time `json:"last_updated,omitempty"` // When this record was last reconciled
}

// Validate checks the identity fields a session can never be without.
// FirstName and LastName are display fields and may be empty strings.
func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("user username is required")
	}
	return nil
}

// DisplayName returns the best human-readable name for the user.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
