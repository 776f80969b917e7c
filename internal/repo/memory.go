package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "todoapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemoryTodoRepo is an in-memory TodoRepo with the same semantics as the
// Postgres implementation: owner-scoped lookups return pgx.ErrNoRows for
// missing and foreign rows alike, and MarkCompleted is a one-way latch.
// Used by tests.
type MemoryTodoRepo struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]dom.Todo
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{nextID: 1, todos: make(map[int64]dom.Todo)}
}

func (r *MemoryTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	t.Created = time.Now().UTC()
	t.DateCompleted = nil
	r.todos[t.ID] = t
	return t, nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, userID, id int64) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owned(userID, id)
}

func (r *MemoryTodoRepo) ListCurrent(_ context.Context, userID int64) ([]dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.Todo
	for _, t := range r.todos {
		if t.UserID == userID && !t.Completed() {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *MemoryTodoRepo) ListCompleted(_ context.Context, userID int64) ([]dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.Todo
	for _, t := range r.todos {
		if t.UserID == userID && t.Completed() {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].DateCompleted.After(*list[j].DateCompleted)
	})
	return list, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, userID, id int64, title, memo string, important bool) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.owned(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	t.Title = title
	t.Memo = memo
	t.Important = important
	r.todos[id] = t
	return t, nil
}

func (r *MemoryTodoRepo) MarkCompleted(_ context.Context, userID, id int64) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.owned(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	if t.Completed() {
		return t, nil
	}
	now := time.Now().UTC()
	t.DateCompleted = &now
	r.todos[id] = t
	return t, nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.owned(userID, id); err != nil {
		return err
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepo) owned(userID, id int64) (dom.Todo, error) {
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

// MemoryUserRepo is an in-memory UserRepo. A duplicate username returns
// the same unique-violation error shape as Postgres.
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]dom.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{nextID: 1, users: make(map[string]dom.User)}
}

func (r *MemoryUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemoryUserRepo) Create(_ context.Context, username, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	u := dom.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.users[username] = u
	return u, nil
}
