package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		hourly_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		text_size TEXT NOT NULL DEFAULT 'medium',
		employee_code TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_user_name ON projects (user_id, name)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		clock_in TIMESTAMPTZ NOT NULL,
		clock_out TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		project_id UUID REFERENCES projects(id) ON DELETE SET NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_clock_in ON sessions (clock_in)`,
	`CREATE TABLE IF NOT EXISTS active_sessions (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		clock_in TIMESTAMPTZ NOT NULL,
		project_id UUID REFERENCES projects(id) ON DELETE SET NULL,
		break_time_ms BIGINT NOT NULL DEFAULT 0,
		is_on_break BOOLEAN NOT NULL DEFAULT FALSE,
		break_start TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_reports (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		week_id TEXT NOT NULL,
		week_start TIMESTAMPTZ NOT NULL,
		week_end TIMESTAMPTZ NOT NULL,
		total_ms BIGINT NOT NULL,
		session_count INTEGER NOT NULL,
		earnings DOUBLE PRECISION NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_weekly_reports_user_week ON weekly_reports (user_id, week_id)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id)`,
	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admin_employees (
		id UUID PRIMARY KEY,
		admin_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		employee_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_admin_employees_pair ON admin_employees (admin_id, employee_id)`,
	`CREATE TABLE IF NOT EXISTS change_requests (
		id UUID PRIMARY KEY,
		sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipient_id UUID REFERENCES users(id) ON DELETE SET NULL,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		requested_clock_in TIMESTAMPTZ NOT NULL,
		requested_clock_out TIMESTAMPTZ NOT NULL,
		message TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		response_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_change_requests_sender ON change_requests (sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_change_requests_status ON change_requests (status)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
