package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

func (r *PostgresRepository) GetWeeklyReport(ctx context.Context, userID, weekID string) (*repository.WeeklyReport, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, week_id, week_start, week_end, total_ms, session_count, earnings, generated_at
		 FROM weekly_reports WHERE user_id = $1 AND week_id = $2`, userID, weekID)
	w, err := scanWeeklyReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *PostgresRepository) CreateWeeklyReport(ctx context.Context, input repository.CreateWeeklyReportInput) (*repository.WeeklyReport, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO weekly_reports (id, user_id, week_id, week_start, week_end, total_ms, session_count, earnings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, user_id, week_id, week_start, week_end, total_ms, session_count, earnings, generated_at`,
		uuid.NewString(), input.UserID, input.WeekID, input.WeekStart, input.WeekEnd,
		input.TotalMS, input.SessionCount, input.Earnings)
	w, err := scanWeeklyReport(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return w, nil
}

func (r *PostgresRepository) ListWeeklyReports(ctx context.Context, userID string, limit int) ([]repository.WeeklyReport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, week_id, week_start, week_end, total_ms, session_count, earnings, generated_at
		 FROM weekly_reports WHERE user_id = $1 ORDER BY week_start DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.WeeklyReport
	for rows.Next() {
		w, err := scanWeeklyReport(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

func scanWeeklyReport(row pgx.Row) (*repository.WeeklyReport, error) {
	var w repository.WeeklyReport
	err := row.Scan(&w.ID, &w.UserID, &w.WeekID, &w.WeekStart, &w.WeekEnd, &w.TotalMS, &w.SessionCount, &w.Earnings, &w.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepository) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), userID, token, expiresAt)
	return err
}

func (r *PostgresRepository) GetRefreshToken(ctx context.Context, token string, now time.Time) (*repository.RefreshToken, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, created_at
		 FROM refresh_tokens WHERE token = $1 AND expires_at > $2`, token, now)
	var t repository.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *PostgresRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) CreateResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO password_reset_tokens (id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), userID, token, expiresAt)
	return err
}

func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time) (*repository.ResetToken, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE password_reset_tokens SET used = TRUE
		 WHERE token = $1 AND NOT used AND expires_at > $2
		 RETURNING id, user_id, token, expires_at, used, created_at`, token, now)
	var t repository.ResetToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1 OR used`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) CreateLink(ctx context.Context, adminID, employeeID string) (*repository.EmployeeLink, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO admin_employees (id, admin_id, employee_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, admin_id, employee_id, created_at`,
		uuid.NewString(), adminID, employeeID)
	var l repository.EmployeeLink
	err := row.Scan(&l.ID, &l.AdminID, &l.EmployeeID, &l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &l, nil
}

func (r *PostgresRepository) DeleteLink(ctx context.Context, adminID, employeeID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM admin_employees WHERE admin_id = $1 AND employee_id = $2`, adminID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) LinkExists(ctx context.Context, adminID, employeeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admin_employees WHERE admin_id = $1 AND employee_id = $2)`,
		adminID, employeeID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) ListEmployees(ctx context.Context, adminID string) ([]repository.User, error) {
	return r.listLinkedUsers(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at, u.updated_at
		 FROM admin_employees l
		 JOIN users u ON u.id = l.employee_id
		 WHERE l.admin_id = $1 ORDER BY l.created_at DESC`, adminID)
}

func (r *PostgresRepository) ListAdmins(ctx context.Context, employeeID string) ([]repository.User, error) {
	return r.listLinkedUsers(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at, u.updated_at
		 FROM admin_employees l
		 JOIN users u ON u.id = l.admin_id
		 WHERE l.employee_id = $1 ORDER BY l.created_at DESC`, employeeID)
}

func (r *PostgresRepository) listLinkedUsers(ctx context.Context, query, arg string) ([]repository.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

const changeRequestSelectColumns = `c.id, c.sender_id, c.recipient_id, c.session_id, c.requested_clock_in,
	c.requested_clock_out, c.message, c.status, c.response_message, c.created_at, c.updated_at, u.username`

func (r *PostgresRepository) CreateChangeRequest(ctx context.Context, input repository.CreateChangeRequestInput) (*repository.ChangeRequest, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO change_requests (id, sender_id, recipient_id, session_id, requested_clock_in, requested_clock_out, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')`,
		id, input.SenderID, input.RecipientID, input.SessionID,
		input.RequestedClockIn, input.RequestedClockOut, input.Message)
	if err != nil {
		return nil, err
	}
	return r.GetChangeRequest(ctx, id)
}

func (r *PostgresRepository) GetChangeRequest(ctx context.Context, id string) (*repository.ChangeRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+changeRequestSelectColumns+`
		 FROM change_requests c
		 JOIN users u ON u.id = c.sender_id
		 WHERE c.id = $1`, id)
	c, err := scanChangeRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) ListChangeRequestsBySender(ctx context.Context, senderID string, limit int) ([]repository.ChangeRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+changeRequestSelectColumns+`
		 FROM change_requests c
		 JOIN users u ON u.id = c.sender_id
		 WHERE c.sender_id = $1
		 ORDER BY c.created_at DESC LIMIT $2`, senderID, limit)
	if err != nil {
		return nil, err
	}
	return collectChangeRequests(rows)
}

func (r *PostgresRepository) ListChangeRequestsBySenders(ctx context.Context, senderIDs []string, limit int) ([]repository.ChangeRequest, error) {
	if len(senderIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+changeRequestSelectColumns+`
		 FROM change_requests c
		 JOIN users u ON u.id = c.sender_id
		 WHERE c.sender_id = ANY($1)
		 ORDER BY c.created_at DESC LIMIT $2`, senderIDs, limit)
	if err != nil {
		return nil, err
	}
	return collectChangeRequests(rows)
}

func (r *PostgresRepository) ResolveChangeRequest(ctx context.Context, input repository.ResolveChangeRequestInput) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE change_requests
		 SET status = $2, response_message = $3, updated_at = NOW()
		 WHERE id = $1`,
		input.RequestID, string(input.Status), input.ResponseMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CountPendingBySenders(ctx context.Context, senderIDs []string) (int, error) {
	if len(senderIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM change_requests WHERE status = 'pending' AND sender_id = ANY($1)`,
		senderIDs).Scan(&count)
	return count, err
}

func collectChangeRequests(rows pgx.Rows) ([]repository.ChangeRequest, error) {
	defer rows.Close()
	var list []repository.ChangeRequest
	for rows.Next() {
		c, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func scanChangeRequest(row pgx.Row) (*repository.ChangeRequest, error) {
	var c repository.ChangeRequest
	var status string
	err := row.Scan(&c.ID, &c.SenderID, &c.RecipientID, &c.SessionID, &c.RequestedClockIn,
		&c.RequestedClockOut, &c.Message, &status, &c.ResponseMessage, &c.CreatedAt, &c.UpdatedAt, &c.SenderName)
	if err != nil {
		return nil, err
	}
	c.Status = repository.ChangeRequestStatus(status)
	return &c, nil
}
