// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/models"
)

const handshakesTable = "handshakes"

var handshakeColumns = []string{
	"id", "peer_label", "peer_fingerprint", "peer_public_key",
	"state", "local_key_id", "created_at", "updated_at",
}

// sqliteHandshakeStore is the SQLite-backed implementation of
// [HandshakeStore]. Transition atomicity relies on a guarded UPDATE
// (`WHERE id = ? AND state = 'pending'`) so that concurrent attempts on the
// same id can never both succeed, regardless of connection interleaving.
type sqliteHandshakeStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteHandshakeStore constructs a [HandshakeStore] backed by the
// provided database connection and logger.
func NewSQLiteHandshakeStore(db *DB, log *logger.Logger) HandshakeStore {
	log.Debug().Msg("creating sqlite handshake store")
	return &sqliteHandshakeStore{db: db, logger: log}
}

// Create implements [HandshakeStore].
func (s *sqliteHandshakeStore) Create(ctx context.Context, hs models.Handshake) (models.Handshake, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Insert(handshakesTable).
		Columns(handshakeColumns...).
		Values(hs.ID, hs.PeerLabel, hs.PeerFingerprint, hs.PeerPublicKey,
			string(hs.State), hs.LocalKeyID, hs.CreatedAt, hs.UpdatedAt).
		ToSql()
	if err != nil {
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*sqliteHandshakeStore.Create").Msg("insert handshake failed")
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return hs, nil
}

// Get implements [HandshakeStore].
func (s *sqliteHandshakeStore) Get(ctx context.Context, id string) (models.Handshake, error) {
	query, args, err := sq.Select(handshakeColumns...).
		From(handshakesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	hs, err := scanHandshake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Handshake{}, ErrHandshakeNotFound
	}
	return hs, err
}

// Transition implements [HandshakeStore]. The UPDATE is guarded on the
// pending state; zero affected rows means the handshake either does not
// exist or already left pending, and a follow-up lookup distinguishes the
// two.
func (s *sqliteHandshakeStore) Transition(ctx context.Context, id string, change StateChange) (models.Handshake, error) {
	log := logger.FromContext(ctx)

	update := sq.Update(handshakesTable).
		Set("state", string(change.To)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "state": string(models.HandshakePending)})
	if change.To == models.HandshakeAccepted {
		update = update.
			Set("peer_public_key", change.PeerPublicKey).
			Set("peer_fingerprint", change.PeerFingerprint)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sqliteHandshakeStore.Transition").Msg("update handshake failed")
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		if _, err := s.Get(ctx, id); errors.Is(err, ErrHandshakeNotFound) {
			return models.Handshake{}, ErrHandshakeNotFound
		}
		return models.Handshake{}, ErrNotPending
	}

	return s.Get(ctx, id)
}

// ListByState implements [HandshakeStore].
func (s *sqliteHandshakeStore) ListByState(ctx context.Context, state models.HandshakeState) ([]models.Handshake, error) {
	query, args, err := sq.Select(handshakeColumns...).
		From(handshakesTable).
		Where(sq.Eq{"state": string(state)}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var out []models.Handshake
	for rows.Next() {
		hs, err := scanHandshake(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, hs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHandshake(row rowScanner) (models.Handshake, error) {
	var (
		hs    models.Handshake
		state string
	)
	err := row.Scan(&hs.ID, &hs.PeerLabel, &hs.PeerFingerprint, &hs.PeerPublicKey,
		&state, &hs.LocalKeyID, &hs.CreatedAt, &hs.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Handshake{}, err
		}
		return models.Handshake{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	hs.State = models.HandshakeState(state)
	return hs, nil
}
