package domain

// Task is a unit of work assigned to a user. Optional references are nil
// when the backend omits them.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Done        bool   `json:"done"`
	PriorityID  *int64 `json:"priority_id,omitempty"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	UserID      *int64 `json:"user_id,omitempty"`
}

// AssignedTo reports whether the task belongs to userID.
func (t Task) AssignedTo(userID int64) bool {
	return t.UserID != nil && *t.UserID == userID
}

// Project groups tasks.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Priority ranks tasks. Lower ids sort first.
type Priority struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref returns a pointer to id, for filling optional task references.
func Ref(id int64) *int64 {
	return &id
}
