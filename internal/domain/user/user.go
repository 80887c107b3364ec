package user

import (
	"encoding/json"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/store"
)

// User represents an account in the finance application.
//
// SECURITY DEFECT: Password is stored and compared in clear text. This
// is kept for compatibility with existing stored data; hashing it
// would break every account already in the store.
type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Balance  float64 `json:"balance"`
}

// Validate checks the fields required to address the user later
func (u *User) Validate() error {
	if u.ID == "" {
		return shared.ErrInvalidInput("user id is required")
	}
	if u.Email == "" {
		return shared.ErrInvalidInput("user email is required")
	}
	return nil
}

// Document converts the user into its stored document form
func (u *User) Document() (store.Document, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}

	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
