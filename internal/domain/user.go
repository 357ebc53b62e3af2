package domain

// User is a registered account. The password hash never leaves the storage
// layer and is deliberately not part of this type.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
