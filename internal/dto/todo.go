package dto

import "time"

// CreateTodoRequest is the JSON body for POST /todos.
type CreateTodoRequest struct {
	Title     string `json:"title" binding:"required,max=100"`
	Memo      string `json:"memo"`
	Important bool   `json:"important"`
}

// UpdateTodoRequest is a partial update: nil means "leave unchanged".
// Owner, id, created and datecompleted are not patchable and have no
// fields here on purpose.
type UpdateTodoRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=100"`
	Memo      *string `json:"memo"`
	Important *bool   `json:"important"`
}

type TodoResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Memo          string     `json:"memo"`
	Important     bool       `json:"important"`
	Created       time.Time  `json:"created"`
	DateCompleted *time.Time `json:"datecompleted"`
}

type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}
