package model

// User is the identity behind a verified session. It is owned by the
// identity provider and only ever read here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
