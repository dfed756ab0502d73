package types

import "time"

// TaskStatus is the completion state of a task.
type TaskStatus string

// Task statuses. No other value is valid.
const (
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// ParseTaskStatus converts s to a TaskStatus.
// Returns ErrInvalidStatus for anything but "pending" or "done".
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusDone:
		return TaskStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether s is one of the defined statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusDone
}

// Task is a leaf work item. Order is its display position within the
// collection and is maintained by the ordering operations of the store.
type Task struct {
	ID           int64      `json:"id"`
	CollectionID int64      `json:"collection_id"`
	Order        int        `json:"task_order"`
	Name         string     `json:"names,omitempty"`
	Description  string     `json:"descriptions,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Status       TaskStatus `json:"status"`
}

// Validate checks the caller-supplied fields of a task. An empty status is
// accepted and treated as pending by the store.
func (t Task) Validate() error {
	if t.CollectionID <= 0 {
		return ErrInvalidData
	}
	if t.Order < 0 {
		return ErrInvalidOrder
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Done reports whether the task is marked done.
func (t Task) Done() bool {
	return t.Status == StatusDone
}
