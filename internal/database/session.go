// internal/database/session.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jeufa/fadu/internal/models"
)

// CreateSession records a freshly paired session as in progress.
func CreateSession(ctx context.Context, sessionID, playerA, playerB uuid.UUID) error {
	q := `
	INSERT INTO sessions (id, player_a, player_b, status, start_time)
	VALUES ($1, $2, $3, 'in_progress', NOW())
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, sessionID, playerA, playerB)
		return e
	})
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// CompleteSession finalizes a session row with its winner (nil for a draw).
func CompleteSession(ctx context.Context, sessionID uuid.UUID, winner *uuid.UUID) error {
	q := `
	UPDATE sessions
	SET status='completed', winner=$1, end_time=NOW()
	WHERE id=$2 AND status='in_progress'
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, winner, sessionID)
		return e
	})
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// InsertTurnRecordTx appends one finished turn inside an existing transaction.
// The session row is upserted so the historian can replay records for a
// session the server never durably created.
func InsertTurnRecordTx(ctx context.Context, tx pgx.Tx, rec models.TurnRecord) error {
	upsertQ := `
	INSERT INTO sessions (id, player_a, player_b, status, start_time)
	VALUES ($1, $2, $3, 'in_progress', NOW())
	ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertQ, rec.SessionID, rec.PlayerA.PlayerID, rec.PlayerB.PlayerID); err != nil {
		return err
	}

	sideA, err := json.Marshal(rec.PlayerA)
	if err != nil {
		return err
	}
	sideB, err := json.Marshal(rec.PlayerB)
	if err != nil {
		return err
	}

	insertQ := `
	INSERT INTO turn_records (session_id, turn_number, player_a_state, player_b_state, recorded_at)
	VALUES ($1, $2, $3, $4, to_timestamp($5))
	ON CONFLICT (session_id, turn_number) DO NOTHING
	`
	_, err = tx.Exec(ctx, insertQ, rec.SessionID, rec.TurnNumber, sideA, sideB, rec.Timestamp)
	return err
}

// InsertTurnRecord appends one finished turn in its own transaction.
func InsertTurnRecord(ctx context.Context, rec models.TurnRecord) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return InsertTurnRecordTx(ctx, tx, rec)
	})
}
