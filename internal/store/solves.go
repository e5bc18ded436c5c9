package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/stepsolver/internal/ir"
	"github.com/roach88/stepsolver/internal/steps"
)

// ErrNotFound is returned when no solve has the requested id.
var ErrNotFound = errors.New("solve not found")

// Solve is a stored solve result.
type Solve struct {
	ID         string
	Method     string
	Input      string
	Preset     string
	ResultHash string
	// Result is the canonical JSON encoding of the transformation.
	Result    []byte
	CreatedAt time.Time
}

// NewSolve is what WriteSolve records.
type NewSolve struct {
	Method string
	Input  string
	Preset string
	Result *steps.Transformation
}

// WriteSolve encodes the result, hashes it and records the solve under a
// fresh id.
func (s *Store) WriteSolve(ctx context.Context, in NewSolve) (*Solve, error) {
	if in.Result == nil {
		return nil, fmt.Errorf("write solve: nil result")
	}
	data, err := ir.Marshal(ir.EncodeTransformation(in.Result))
	if err != nil {
		return nil, fmt.Errorf("write solve: %w", err)
	}
	solve := &Solve{
		ID:         s.ids.Generate(),
		Method:     in.Method,
		Input:      in.Input,
		Preset:     in.Preset,
		ResultHash: ir.HashCanonical(data),
		Result:     data,
		CreatedAt:  s.clock().UTC().Truncate(time.Millisecond),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO solves (id, method, input, preset, result_hash, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		solve.ID,
		solve.Method,
		solve.Input,
		solve.Preset,
		solve.ResultHash,
		string(solve.Result),
		solve.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("write solve: %w", err)
	}
	return solve, nil
}

const selectSolves = `SELECT id, method, input, preset, result_hash, result, created_at FROM solves`

// ReadSolve returns the solve with the given id. The stored result is
// checked against its hash.
func (s *Store) ReadSolve(ctx context.Context, id string) (*Solve, error) {
	row := s.db.QueryRowContext(ctx, selectSolves+` WHERE id = ?`, id)
	solve, err := scanSolve(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read solve %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read solve %s: %w", id, err)
	}
	if got := ir.HashCanonical(solve.Result); got != solve.ResultHash {
		return nil, fmt.Errorf("read solve %s: stored result hash %s does not match %s", id, solve.ResultHash, got)
	}
	return solve, nil
}

// ListSolves returns the most recent solves first. An empty method lists
// every method; a limit of zero or less lists them all.
func (s *Store) ListSolves(ctx context.Context, method string, limit int) ([]*Solve, error) {
	if limit <= 0 {
		limit = -1
	}
	query := selectSolves + ` WHERE (? = '' OR method = ?) ORDER BY id COLLATE BINARY DESC LIMIT ?`
	return s.query(ctx, "list solves", query, method, method, limit)
}

// FindByHash returns the solves whose result has the given hash, oldest
// first.
func (s *Store) FindByHash(ctx context.Context, hash string) ([]*Solve, error) {
	query := selectSolves + ` WHERE result_hash = ? ORDER BY id COLLATE BINARY ASC`
	return s.query(ctx, "find by hash", query, hash)
}

func (s *Store) query(ctx context.Context, op, query string, args ...any) ([]*Solve, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	solves := []*Solve{}
	for rows.Next() {
		solve, err := scanSolve(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		solves = append(solves, solve)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return solves, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSolve(row scanner) (*Solve, error) {
	var (
		solve     Solve
		result    string
		createdAt int64
	)
	if err := row.Scan(&solve.ID, &solve.Method, &solve.Input, &solve.Preset, &solve.ResultHash, &result, &createdAt); err != nil {
		return nil, err
	}
	solve.Result = []byte(result)
	solve.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &solve, nil
}
