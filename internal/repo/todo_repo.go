package repo

import (
	"context"
	"errors"

	dom "todoapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TodoRepo is the todo entity store. Every read and write is scoped by
// the owning user, so a row that exists but belongs to someone else is
// indistinguishable from a missing row (pgx.ErrNoRows either way).
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Todo, error)
	ListCurrent(ctx context.Context, userID int64) ([]dom.Todo, error)
	ListCompleted(ctx context.Context, userID int64) ([]dom.Todo, error)
	Update(ctx context.Context, userID, id int64, title, memo string, important bool) (dom.Todo, error)
	MarkCompleted(ctx context.Context, userID, id int64) (dom.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

const todoColumns = `id, user_id, title, memo, important, created, datecompleted`

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, memo, important)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + todoColumns
	var out dom.Todo
	err := r.db.QueryRow(ctx, query, t.UserID, t.Title, t.Memo, t.Important).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Memo, &out.Important,
		&out.Created, &out.DateCompleted,
	)
	return out, err
}

func (r *PGTodoRepo) GetByID(ctx context.Context, userID, id int64) (dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE id = $1 AND user_id = $2`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Memo, &t.Important,
		&t.Created, &t.DateCompleted,
	)
	return t, err
}

// ListCurrent returns todos without a completion date. Ordered by id,
// which reproduces insertion order and keeps the result stable.
func (r *PGTodoRepo) ListCurrent(ctx context.Context, userID int64) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE user_id = $1 AND datecompleted IS NULL ORDER BY id`
	return r.list(ctx, query, userID)
}

// ListCompleted returns completed todos, most recently completed first.
// The descending order is part of the contract.
func (r *PGTodoRepo) ListCompleted(ctx context.Context, userID int64) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE user_id = $1 AND datecompleted IS NOT NULL ORDER BY datecompleted DESC`
	return r.list(ctx, query, userID)
}

// Update only touches title, memo and important. Owner, created and
// datecompleted cannot be reached through this statement.
func (r *PGTodoRepo) Update(ctx context.Context, userID, id int64, title, memo string, important bool) (dom.Todo, error) {
	query := `
		UPDATE todos SET title = $3, memo = $4, important = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id, userID, title, memo, important).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Memo, &t.Important,
		&t.Created, &t.DateCompleted,
	)
	return t, err
}

// MarkCompleted sets datecompleted with a conditional single-row update,
// so two concurrent calls can never produce two different timestamps.
// Calling it on an already-completed todo returns the record unchanged.
func (r *PGTodoRepo) MarkCompleted(ctx context.Context, userID, id int64) (dom.Todo, error) {
	query := `
		UPDATE todos SET datecompleted = NOW()
		WHERE id = $1 AND user_id = $2 AND datecompleted IS NULL
		RETURNING ` + todoColumns
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Memo, &t.Important,
		&t.Created, &t.DateCompleted,
	)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, err
	}
	// Guard missed: either already completed (return as is) or no row.
	return r.GetByID(ctx, userID, id)
}

func (r *PGTodoRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGTodoRepo) list(ctx context.Context, query string, userID int64) ([]dom.Todo, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Memo, &t.Important,
			&t.Created, &t.DateCompleted); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
