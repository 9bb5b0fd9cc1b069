package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

const sessionSelectColumns = `s.id, s.user_id, s.clock_in, s.clock_out, s.duration_ms, s.project_id, s.notes, s.created_at, p.name`

func (r *PostgresRepository) CreateActiveSession(ctx context.Context, input repository.CreateActiveSessionInput) (*repository.ActiveSession, error) {
	// user_id is the primary key: the insert itself is the clock-in
	// gate, a concurrent duplicate loses with a unique violation.
	_, err := r.pool.Exec(ctx,
		`INSERT INTO active_sessions (user_id, clock_in, project_id, break_time_ms, is_on_break)
		 VALUES ($1, $2, $3, 0, FALSE)`,
		input.UserID, input.ClockIn, input.ProjectID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return r.GetActiveSession(ctx, input.UserID)
}

func (r *PostgresRepository) GetActiveSession(ctx context.Context, userID string) (*repository.ActiveSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT a.user_id, a.clock_in, a.project_id, a.break_time_ms, a.is_on_break, a.break_start, a.created_at, p.name
		 FROM active_sessions a
		 LEFT JOIN projects p ON p.id = a.project_id
		 WHERE a.user_id = $1`, userID)
	var a repository.ActiveSession
	err := row.Scan(&a.UserID, &a.ClockIn, &a.ProjectID, &a.BreakTimeMS, &a.IsOnBreak, &a.BreakStart, &a.CreatedAt, &a.ProjectName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) UpdateActiveBreak(ctx context.Context, input repository.UpdateActiveBreakInput) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE active_sessions
		 SET is_on_break = $2, break_start = $3, break_time_ms = $4
		 WHERE user_id = $1`,
		input.UserID, input.IsOnBreak, input.BreakStart, input.BreakTimeMS)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CloseActiveSession(ctx context.Context, input repository.CloseActiveSessionInput) (*repository.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Conditional delete doubles as the duplicate clock-out guard:
	// zero rows means another request already closed this session.
	tag, err := tx.Exec(ctx, `DELETE FROM active_sessions WHERE user_id = $1`, input.UserID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	id := uuid.NewString()
	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, clock_in, clock_out, duration_ms, project_id, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.UserID, input.ClockIn, input.ClockOut, input.DurationMS, input.ProjectID, input.Notes)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.getSessionByID(ctx, id)
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, clock_in, clock_out, duration_ms, project_id, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.UserID, input.ClockIn, input.ClockOut, input.DurationMS, input.ProjectID, input.Notes)
	if err != nil {
		return nil, err
	}
	return r.getSessionByID(ctx, id)
}

func (r *PostgresRepository) GetSession(ctx context.Context, userID, id string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM sessions s
		 LEFT JOIN projects p ON p.id = s.project_id
		 WHERE s.id = $1 AND s.user_id = $2`, sessionSelectColumns), id, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) getSessionByID(ctx context.Context, id string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM sessions s
		 LEFT JOIN projects p ON p.id = s.project_id
		 WHERE s.id = $1`, sessionSelectColumns), id)
	return scanSession(row)
}

func (r *PostgresRepository) ListSessions(ctx context.Context, f repository.SessionFilter) ([]repository.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions s
		LEFT JOIN projects p ON p.id = s.project_id
		WHERE s.user_id = $1`, sessionSelectColumns)
	args := []any{f.UserID}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(` AND s.clock_in >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(` AND s.clock_in <= $%d`, len(args))
	}
	query += ` ORDER BY s.clock_in DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, input repository.UpdateSessionInput) (*repository.Session, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET clock_in = $3, clock_out = $4, duration_ms = $5, project_id = $6, notes = $7
		 WHERE id = $1 AND user_id = $2`,
		input.SessionID, input.UserID, input.ClockIn, input.ClockOut, input.DurationMS, input.ProjectID, input.Notes)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.getSessionByID(ctx, input.SessionID)
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ClockIn, &s.ClockOut, &s.DurationMS, &s.ProjectID, &s.Notes, &s.CreatedAt, &s.ProjectName)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
