package domain

// Board is a container for tasks owned by exactly one user. Ownership is
// fixed at creation and never changes afterwards.
type Board struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	OwnerID int64  `json:"ownerId"`
}
