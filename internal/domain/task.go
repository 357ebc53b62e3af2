package domain

// Task represents a single board item. AssigneeID is nil for unassigned
// tasks; AssigneeEmail is populated only on read paths that join the users
// table.
type Task struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	BoardID       int64  `json:"boardId"`
	AssigneeID    *int64 `json:"assigneeId,omitempty"`
	AssigneeEmail string `json:"assigneeEmail,omitempty"`
}
