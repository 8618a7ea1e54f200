package match

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id          TEXT PRIMARY KEY,
	decklist_a  TEXT NOT NULL,
	decklist_b  TEXT NOT NULL,
	player_a    TEXT NOT NULL,
	player_b    TEXT NOT NULL,
	seed        TEXT NOT NULL,
	winner      INTEGER NOT NULL,
	turns       INTEGER NOT NULL,
	actions     INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS matches_started_at_idx ON matches (started_at DESC);
`

const selectColumns = `id, decklist_a, decklist_b, player_a, player_b, seed, winner, turns, actions, duration_ms, started_at, error`

// PostgresStore keeps records in the matches table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to dsn and checks the connection.
func NewPostgresStore(ctx context.Context, dsn string, logger zerolog.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres store needs a DSN")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "postgres_store").Logger(),
	}, nil
}

// EnsureSchema creates the matches table if it does not exist.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := ps.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	ps.logger.Debug().Msg("Schema ready")
	return nil
}

func (ps *PostgresStore) Save(ctx context.Context, rec Record) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO matches (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			winner = EXCLUDED.winner,
			turns = EXCLUDED.turns,
			actions = EXCLUDED.actions,
			duration_ms = EXCLUDED.duration_ms,
			error = EXCLUDED.error
	`,
		rec.ID,
		rec.Decklists[0],
		rec.Decklists[1],
		string(rec.Players[0]),
		string(rec.Players[1]),
		strconv.FormatUint(rec.Seed, 10),
		rec.Winner,
		rec.Turns,
		rec.Actions,
		rec.Duration.Milliseconds(),
		rec.StartedAt,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", rec.ID, err)
	}
	return nil
}

func (ps *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := ps.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM matches WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (ps *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM matches ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := ps.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Truncate deletes every record.
func (ps *PostgresStore) Truncate(ctx context.Context) error {
	_, err := ps.pool.Exec(ctx, `TRUNCATE matches`)
	return err
}

func (ps *PostgresStore) Close() error {
	ps.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec              Record
		playerA, playerB string
		seed             string
		durationMS       int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.Decklists[0],
		&rec.Decklists[1],
		&playerA,
		&playerB,
		&seed,
		&rec.Winner,
		&rec.Turns,
		&rec.Actions,
		&durationMS,
		&rec.StartedAt,
		&rec.Error,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Players = [2]PlayerKind{PlayerKind(playerA), PlayerKind(playerB)}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	if rec.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Record{}, fmt.Errorf("match %s seed: %w", rec.ID, err)
	}
	return rec, nil
}
