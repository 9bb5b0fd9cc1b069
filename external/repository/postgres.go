package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakmontlabs/timepunch/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *PostgresRepository) CreateUser(ctx context.Context, input repository.CreateUserInput) (*repository.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, email, password_hash, is_admin, created_at, updated_at`,
		uuid.NewString(), input.Username, input.Email, input.PasswordHash, input.IsAdmin)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, usernameOrEmail string) (*repository.User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE username = $1 OR email = $1`, usernameOrEmail)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	return r.getUser(ctx, `SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) getUser(ctx context.Context, query, arg string) (*repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetSettings(ctx context.Context, userID string) (*repository.Settings, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, hourly_rate, text_size, employee_code, created_at, updated_at
		 FROM user_settings WHERE user_id = $1`, userID)
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) CreateSettings(ctx context.Context, s repository.Settings) (*repository.Settings, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, hourly_rate, text_size, employee_code)
		 VALUES ($1, $2, $3, $4)
		 RETURNING user_id, hourly_rate, text_size, employee_code, created_at, updated_at`,
		s.UserID, s.HourlyRate, s.TextSize, s.EmployeeCode)
	created, err := scanSettings(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, userID string, hourlyRate *float64, textSize *string) (*repository.Settings, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE user_settings
		 SET hourly_rate = COALESCE($2, hourly_rate),
		     text_size = COALESCE($3, text_size),
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING user_id, hourly_rate, text_size, employee_code, created_at, updated_at`,
		userID, hourlyRate, textSize)
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) GetSettingsByEmployeeCode(ctx context.Context, code string) (*repository.Settings, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, hourly_rate, text_size, employee_code, created_at, updated_at
		 FROM user_settings WHERE employee_code = $1`, code)
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) ListSettingsMissingEmployeeCode(ctx context.Context) ([]repository.Settings, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.user_id, s.hourly_rate, s.text_size, s.employee_code, s.created_at, s.updated_at
		 FROM user_settings s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.employee_code IS NULL AND NOT u.is_admin`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Settings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) SetEmployeeCode(ctx context.Context, userID, code string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_settings SET employee_code = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, code)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanSettings(row pgx.Row) (*repository.Settings, error) {
	var s repository.Settings
	err := row.Scan(&s.UserID, &s.HourlyRate, &s.TextSize, &s.EmployeeCode, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) CreateProject(ctx context.Context, input repository.CreateProjectInput) (*repository.Project, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO projects (id, user_id, name)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, created_at`,
		uuid.NewString(), input.UserID, input.Name)
	p, err := scanProject(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) GetProject(ctx context.Context, userID, id string) (*repository.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM projects WHERE id = $1 AND user_id = $2`,
		id, userID)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) ListProjects(ctx context.Context, userID string) ([]repository.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM projects WHERE user_id = $1 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) RenameProject(ctx context.Context, userID, id, name string) (*repository.Project, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE projects SET name = $3 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, name, created_at`,
		id, userID, name)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) DeleteProject(ctx context.Context, userID, id string) error {
	// project_id references carry ON DELETE SET NULL, so sessions and
	// the active session survive the delete with a nulled reference.
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*repository.Project, error) {
	var p repository.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
