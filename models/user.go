package models

// User là tài khoản người dùng. PasswordHash không bao giờ được trả về client.
type User struct {
	ID           int64  `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
