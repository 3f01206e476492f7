package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskman-dev/taskman/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (int64, error) {
	if params.Title == "" {
		s.logger.Error().Msg("empty task title")
		return 0, ErrEmptyTitle
	}
	if !models.IsValidStatus(params.Status) {
		s.logger.Error().
			Str("status", params.Status).
			Msg("invalid task status")
		return 0, ErrInvalidTaskStatus
	}

	task := models.Task{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		CreatedBy:   params.CreatedBy,
		AssignedTo:  params.AssignedTo,
		CreatedAt:   time.Now(),
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   status,
                   created_by,
                   assigned_to,
                   created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedBy,
		task.AssignedTo,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return 0, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("created_by", task.CreatedBy).
		Msg("created task")
	return task.ID, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, params UpdateTaskParams) error {
	if !models.IsValidStatus(params.Status) {
		s.logger.Error().
			Str("status", params.Status).
			Msg("invalid task status")
		return ErrInvalidTaskStatus
	}

	// Flat trust: no created_by predicate, any authenticated
	// user may update any task.
	const updateTaskQuery = `
UPDATE tasks
SET status = $1,
    assigned_to = $2
WHERE id = $3
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		params.Status,
		params.AssignedTo,
		params.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", params.ID).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Int64("task_id", params.ID).
			Msg("task not found")
		return ErrTaskNotFound
	}
	s.logger.Debug().
		Int64("task_id", params.ID).
		Msg("updated task")

	s.logger.Info().
		Int64("task_id", params.ID).
		Str("status", params.Status).
		Msg("updated task")
	return nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, taskID int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Int64("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Msg("deleted task")

	s.logger.Info().
		Int64("task_id", taskID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) List(ctx context.Context, filter TaskFilter) ([]models.TaskView, error) {
	// Empty filter values impose no constraint; both predicates
	// together narrow conjunctively.
	const selectTasksQuery = `
SELECT t.id,
       t.title,
       t.description,
       t.status,
       t.created_at,
       creator.username,
       assignee.username
FROM tasks t
JOIN users creator ON t.created_by = creator.id
JOIN users assignee ON t.assigned_to = assignee.id
WHERE ($1 = '' OR t.status = $1)
  AND ($2 = '' OR assignee.username = $2)
ORDER BY t.created_at DESC
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksQuery,
		filter.Status,
		filter.AssigneeUsername,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []models.TaskView
	for rows.Next() {
		var task models.TaskView
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.CreatedAt,
			&task.CreatedBy,
			&task.AssignedTo,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("status", filter.Status).
		Str("assignee", filter.AssigneeUsername).
		Msg("selected tasks")
	return tasks, nil
}
