package api

import (
	"github.com/eventry/eventry-client-go/internal/utils"
	"github.com/eventry/eventry-client-go/users"
)

// Profile is the wire form of a user record as the backend returns it.
// Display fields are pointers so that a field the backend omitted can be
// told apart from one it sent as an empty string. The verify endpoint in
// particular does not always populate the full profile.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// Complete reports whether the backend populated every display field the
// session layer needs to trust the record outright.
func (p *Profile) Complete() bool {
	return p != nil && p.FirstName != nil && p.LastName != nil && p.Active != nil
}

// User resolves the wire record into the domain form. Omitted fields become
// their zero values; callers that care about the omission must check the
// pointers (or Complete) before converting.
func (p *Profile) User() users.User {
	return users.User{
		ID:        p.ID,
		Email:     p.Email,
		Username:  p.Username,
		FirstName: utils.Value(p.FirstName),
		LastName:  utils.Value(p.LastName),
		AvatarURL: utils.Value(p.AvatarURL),
		Active:    utils.Value(p.Active),
	}
}

// FromUser builds a fully-populated wire profile from a domain record.
func FromUser(u users.User) *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: utils.Ptr(u.FirstName),
		LastName:  utils.Ptr(u.LastName),
		AvatarURL: utils.Ptr(u.AvatarURL),
		Active:    utils.Ptr(u.Active),
	}
}
