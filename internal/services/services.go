package services

import (
	"context"
	"errors"

	"github.com/taskman-dev/taskman/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrEmptyCredentials     = errors.New("empty username or password")
	ErrTaskNotFound         = errors.New("task not found")
	ErrEmptyTitle           = errors.New("empty task title")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

type UserService interface {
	// Register hashes the password and inserts a new user.
	//
	// It returns ErrEmptyCredentials if the username or password
	// is empty, or ErrUserAlreadyExists if the username is taken.
	// Uniqueness is enforced by the storage constraint, not by a
	// pre-check, so concurrent registrations cannot both succeed.
	Register(ctx context.Context, username, password string) (int64, error)

	// Verify checks the password against the stored digest.
	//
	// It returns ErrUserNotFound if no user with the given username
	// exists, or ErrUserPasswordMismatch if the password is wrong.
	Verify(ctx context.Context, username, password string) (int64, error)

	// ListUsers returns all registered users ordered by username.
	ListUsers(ctx context.Context) ([]models.User, error)
}

type SessionService interface {
	// Create inserts a session row for the user and returns it
	// together with the signed token that travels in the cookie.
	Create(ctx context.Context, userID int64, fingerprint string) (*models.Session, string, error)

	// GetByToken verifies the token signature, loads the session it
	// names and checks expiry and fingerprint.
	//
	// It returns ErrSessionNotFound if the token is invalid, the
	// session is gone or the fingerprint does not match, and
	// ErrSessionExpired if the session is past its TTL.
	GetByToken(ctx context.Context, token, fingerprint string) (*models.Session, error)

	// Delete revokes the session.
	Delete(ctx context.Context, sessionID string) error
}

type TaskService interface {
	// Create inserts a task. It returns ErrEmptyTitle if the title
	// is empty and ErrInvalidTaskStatus if the status is not in the
	// fixed vocabulary.
	Create(ctx context.Context, params CreateTaskParams) (int64, error)

	// Update sets status and assignee in place. Any authenticated
	// user may update any task. It returns ErrTaskNotFound if no
	// task with the given id exists.
	Update(ctx context.Context, params UpdateTaskParams) error

	// Delete removes the task. Any authenticated user may delete
	// any task. It returns ErrTaskNotFound if no task with the
	// given id exists.
	Delete(ctx context.Context, taskID int64) error

	// List returns tasks joined with creator and assignee usernames,
	// most recent first. Filter predicates are conjunctive; empty
	// values impose no constraint.
	List(ctx context.Context, filter TaskFilter) ([]models.TaskView, error)
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      string
	CreatedBy   int64
	AssignedTo  int64
}

type UpdateTaskParams struct {
	ID         int64
	Status     string
	AssignedTo int64
}

type TaskFilter struct {
	Status           string
	AssigneeUsername string
}
