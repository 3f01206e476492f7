package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskman-dev/taskman/internal/models"
)

type sessionServiceImpl struct {
	logger     zerolog.Logger
	pgPool     *pgxpool.Pool
	issuer     string
	signingKey []byte
	ttl        time.Duration
}

func NewSessionService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	issuer string,
	signingKey []byte,
	ttl time.Duration,
) SessionService {
	return &sessionServiceImpl{
		logger:     logger,
		pgPool:     pgPool,
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

func (s *sessionServiceImpl) Create(ctx context.Context, userID int64, fingerprint string) (*models.Session, string, error) {
	now := time.Now()
	session := &models.Session{
		UserID:      userID,
		Fingerprint: fingerprint,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, "", err
	}
	session.ID = sessionUUID.String()

	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      fingerprint,
                      expires_at,
                      created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.Fingerprint,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert session")
		return nil, "", err
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")

	token, err := signSessionToken(s.signingKey, s.issuer, session.ID, session.ExpiresAt)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign session token")
		return nil, "", err
	}

	s.logger.Info().
		Int64("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("created session")
	return session, token, nil
}

func (s *sessionServiceImpl) GetByToken(ctx context.Context, token, fingerprint string) (*models.Session, error) {
	sessionID, err := parseSessionToken(s.signingKey, s.issuer, token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to parse session token")
		return nil, ErrSessionNotFound
	}

	session := &models.Session{
		ID: sessionID,
	}

	const selectSessionByIDQuery = `
SELECT s.user_id,
       s.fingerprint,
       s.expires_at,
       s.created_at,
       u.username
FROM sessions s
JOIN users u ON s.user_id = u.id
WHERE s.id = $1
`
	err = s.pgPool.QueryRow(
		ctx,
		selectSessionByIDQuery,
		session.ID,
	).Scan(
		&session.UserID,
		&session.Fingerprint,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.Username,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("session_id", session.ID).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to select session by id")
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.logger.Error().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	if session.Fingerprint != fingerprint {
		s.logger.Error().
			Str("session_id", session.ID).
			Msg("fingerprint mismatch")
		return nil, ErrSessionNotFound
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Int64("user_id", session.UserID).
		Msg("session found")
	return session, nil
}

func (s *sessionServiceImpl) Delete(ctx context.Context, sessionID string) error {
	const deleteSessionQuery = `
DELETE FROM sessions
       WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteSessionQuery,
		sessionID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to delete session")
		return err
	}
	s.logger.Debug().
		Str("session_id", sessionID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted session")

	s.logger.Info().
		Str("session_id", sessionID).
		Msg("logged out")
	return nil
}
