package models

import "time"

// User is an account holder. Password holds the bcrypt hash.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"` // never serialize
	Cart     Cart      `json:"-"`
	Date     time.Time `json:"date"`
}

// SignupRequest is the JSON body for POST /signup.
// The storefront sends the display name as "username"; "user" is accepted as well.
type SignupRequest struct {
	User     string `json:"user"`
	Username string `json:"username"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DisplayName returns whichever name field the client sent.
func (r SignupRequest) DisplayName() string {
	if r.User != "" {
		return r.User
	}
	return r.Username
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}
