package model

// User model
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	// PasswordHash is a base64-encoded bcrypt hash. The plaintext password
	// is never persisted.
	PasswordHash string `json:"password_hash"`
	Admin        bool   `json:"admin"`
	Bio          string `json:"bio" form:"bio"`
}
