package domain

import "time"

// Todo is the domain entity for a single todo item.
// It does not depend on Gin, Postgres or Redis.
//
// DateCompleted is a one-way latch: it goes from nil to a timestamp
// exactly once and is never reset or overwritten.
type Todo struct {
	ID        int64
	UserID    int64
	Title     string
	Memo      string
	Important bool

	Created       time.Time
	DateCompleted *time.Time
}

// Completed reports whether the completion latch has been set.
func (t Todo) Completed() bool { return t.DateCompleted != nil }
