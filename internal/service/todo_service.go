package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	dom "todoapp/internal/domain"
	"todoapp/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// maxTitleLen is the longest accepted title, in characters.
const maxTitleLen = 100

// ListCache caches the per-user current and completed lists. The Redis
// TodoCache is the production implementation. A nil miss is reported as
// (nil, nil).
type ListCache interface {
	GetCurrent(ctx context.Context, userID int64) ([]dom.Todo, error)
	SetCurrent(ctx context.Context, userID int64, list []dom.Todo) error
	GetCompleted(ctx context.Context, userID int64) ([]dom.Todo, error)
	SetCompleted(ctx context.Context, userID int64, list []dom.Todo) error
	Invalidate(ctx context.Context, userID int64) error
}

// TodoService implements the todo lifecycle (create, edit, complete,
// delete) and the ownership-scoped queries (current, completed). Every
// operation takes the caller's user ID explicitly; there is no ambient
// request state.
type TodoService struct {
	repo  repo.TodoRepo
	cache ListCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c ListCache) *TodoService {
	return &TodoService{repo: r, cache: c}
}

func validateTitle(title string) error {
	if title == "" {
		return &ValidationError{Field: "title", Msg: "is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return &ValidationError{Field: "title", Msg: "must be at most 100 characters"}
	}
	return nil
}

// Create stores a new todo owned by userID. The store assigns id and
// the created timestamp; the todo starts uncompleted.
func (s *TodoService) Create(ctx context.Context, userID int64, title, memo string, important bool) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	memo = strings.TrimSpace(memo)
	if err := validateTitle(title); err != nil {
		return dom.Todo{}, err
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:    userID,
		Title:     title,
		Memo:      memo,
		Important: important,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Current lists the caller's todos that are not completed yet.
func (s *TodoService) Current(ctx context.Context, userID int64) ([]dom.Todo, error) {
	if s.cache != nil {
		key := "current:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetCurrent(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListCurrent(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetCurrent(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.ListCurrent(ctx, userID)
}

// Completed lists the caller's completed todos, most recent first.
func (s *TodoService) Completed(ctx context.Context, userID int64) ([]dom.Todo, error) {
	if s.cache != nil {
		key := "completed:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetCompleted(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListCompleted(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetCompleted(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.ListCompleted(ctx, userID)
}

// GetByID fetches one todo owned by userID.
func (s *TodoService) GetByID(ctx context.Context, userID, id int64) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

// Update applies a partial edit to title, memo and important. Completed
// todos stay editable.
func (s *TodoService) Update(ctx context.Context, userID, id int64, title, memo *string, important *bool) (dom.Todo, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	patch := existing
	if title != nil {
		patch.Title = strings.TrimSpace(*title)
	}
	if memo != nil {
		patch.Memo = strings.TrimSpace(*memo)
	}
	if important != nil {
		patch.Important = *important
	}
	if err := validateTitle(patch.Title); err != nil {
		return dom.Todo{}, err
	}
	t, err := s.repo.Update(ctx, userID, id, patch.Title, patch.Memo, patch.Important)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Complete sets the completion timestamp. Completing an already
// completed todo is a no-op that returns the record unchanged.
func (s *TodoService) Complete(ctx context.Context, userID, id int64) (dom.Todo, error) {
	t, err := s.repo.MarkCompleted(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Delete removes the todo permanently.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
