package services

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskman-dev/taskman/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) UserService {
	return &userServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		s.logger.Error().Msg("empty username or password")
		return 0, ErrEmptyCredentials
	}

	user := models.User{
		Username:  username,
		CreatedAt: time.Now(),
	}

	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return 0, err
	}
	user.Password = passwordHash

	const insertUserQuery = `
INSERT INTO users (username,
                   password,
                   created_at)
VALUES ($1, $2, $3)
RETURNING id
`
	err = s.pgPool.QueryRow(
		ctx,
		insertUserQuery,
		user.Username,
		user.Password,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				s.logger.Error().
					Str("username", user.Username).
					Msg("user with this username already exists")
				return 0, ErrUserAlreadyExists
			}
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return 0, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("inserted user")

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("registered user")
	return user.ID, nil
}

func (s *userServiceImpl) Verify(ctx context.Context, username, password string) (int64, error) {
	user := models.User{
		Username: username,
	}

	const selectUserByUsernameQuery = `
SELECT id,
       password
FROM users
WHERE username = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		user.Username,
	).Scan(
		&user.ID,
		&user.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("username", user.Username).
				Msg("user not found")
			return 0, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("username", user.Username).
			Msg("failed to select user by username")
		return 0, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("selected user")

	match, err := argon2id.ComparePasswordAndHash(password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return 0, err
	} else if !match {
		s.logger.Error().Msg("passwords do not match")
		return 0, ErrUserPasswordMismatch
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("verified user")
	return user.ID, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	const selectUsersQuery = `
SELECT id,
       username
FROM users
ORDER BY username
`
	rows, err := s.pgPool.Query(ctx, selectUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err = rows.Scan(
			&user.ID,
			&user.Username,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected users")
	return users, nil
}
