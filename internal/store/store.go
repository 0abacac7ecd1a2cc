// Package store persists every generation outcome as a JSONB document,
// success or failure, so the frontend and later analysis can replay them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/PaulSz7/crossword-generator/internal/gen"
)

var Log = logrus.New()

var ErrNotFound = errors.New("crossword not found")

const schema = `
CREATE TABLE IF NOT EXISTS crossword (
	crossword_id	bigserial PRIMARY KEY,
	status			text NOT NULL,
	seed			bigint NOT NULL,
	fingerprint		text NOT NULL,
	doc				jsonb NOT NULL,
	created_at		timestamptz NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS crossword_fingerprint_idx
	ON crossword (fingerprint) WHERE status = 'success';
`

// Store wraps the connection pool.
type Store struct {
	db *pgxpool.Pool
}

// Open connects, pings and ensures the schema.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db}, nil
}

func (s *Store) Close() { s.db.Close() }

// Document is one stored generation outcome.
type Document struct {
	CrosswordID int64           `json:"crossword_id" db:"crossword_id"`
	Status      string          `json:"status" db:"status"`
	Seed        int64           `json:"seed" db:"seed"`
	Fingerprint string          `json:"fingerprint" db:"fingerprint"`
	Doc         json.RawMessage `json:"doc" db:"doc"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type successDoc struct {
	Config gen.Config  `json:"config"`
	Result *gen.Result `json:"result"`
}

type failureDoc struct {
	Config gen.Config           `json:"config"`
	Kind   gen.Kind             `json:"kind"`
	Error  string               `json:"error"`
	Trace  []gen.AttemptFailure `json:"trace"`
}

// fingerprint identifies a successful generation by its inputs; equal
// seeds and configs would reproduce the same puzzle, so storing one copy
// is enough.
func fingerprint(cfg gen.Config) string {
	return fmt.Sprintf("%dx%d:%s:%d:%s:%v",
		cfg.Height, cfg.Width, cfg.Difficulty, cfg.Seed, cfg.Topic, cfg.WordsOnly)
}

// SaveResult stores a sealed result, returning the existing document id
// when the same configuration was already stored.
func (s *Store) SaveResult(ctx context.Context, cfg gen.Config, res *gen.Result) (int64, error) {
	doc, err := json.Marshal(successDoc{Config: cfg, Result: res})
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO crossword (status, seed, fingerprint, doc)
		VALUES ('success', @seed, @fingerprint, @doc)
		RETURNING crossword_id`,
		pgx.NamedArgs{
			"seed":        int64(cfg.Seed),
			"fingerprint": fingerprint(cfg),
			"doc":         doc,
		}).Scan(&id)
	if isUniqueViolation(err) {
		err = s.db.QueryRow(ctx, `
			SELECT crossword_id FROM crossword
			WHERE fingerprint = $1 AND status = 'success'`,
			fingerprint(cfg)).Scan(&id)
		if err == nil {
			Log.WithField("crossword_id", id).Debug("crossword already stored")
			return id, nil
		}
	}
	if err != nil {
		return 0, err
	}
	Log.WithField("crossword_id", id).Info("crossword saved")
	return id, nil
}

// SaveFailure stores a failed generation with its attempt trace.
func (s *Store) SaveFailure(ctx context.Context, cfg gen.Config, genErr *gen.Error) (int64, error) {
	doc, err := json.Marshal(failureDoc{
		Config: cfg,
		Kind:   genErr.Kind,
		Error:  genErr.Error(),
		Trace:  genErr.Trace,
	})
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO crossword (status, seed, fingerprint, doc)
		VALUES ('failed', @seed, @fingerprint, @doc)
		RETURNING crossword_id`,
		pgx.NamedArgs{
			"seed":        int64(cfg.Seed),
			"fingerprint": fingerprint(cfg),
			"doc":         doc,
		}).Scan(&id)
	if err != nil {
		return 0, err
	}
	Log.WithField("crossword_id", id).Info("crossword failure saved")
	return id, nil
}

// Get fetches one stored document.
func (s *Store) Get(ctx context.Context, id int64) (*Document, error) {
	rows, err := s.db.Query(ctx, `
		SELECT crossword_id, status, seed, fingerprint, doc, created_at
		FROM crossword
		WHERE crossword_id = $1`, id)
	if err != nil {
		return nil, err
	}
	doc, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Document])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// Recent lists the latest documents, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT crossword_id, status, seed, fingerprint, doc, created_at
		FROM crossword
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Document])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
