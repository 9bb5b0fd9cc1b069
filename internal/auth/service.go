package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/oakmontlabs/timepunch/internal/config"
	"github.com/oakmontlabs/timepunch/internal/mailer"
	"github.com/oakmontlabs/timepunch/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
	refreshTokenBytes = 64
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour
	defaultTextSize   = "medium"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the slice of the repository the auth service depends on.
type Store interface {
	repository.UserRepository
	repository.SettingsRepository
	repository.TokenRepository
}

type Service struct {
	store      Store
	mail       mailer.Sender
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
	fromAddr   string
	now        func() time.Time
}

func NewService(cfg *config.Config, store Store, mail mailer.Sender) *Service {
	return &Service{
		store:      store,
		mail:       mail,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour,
		bcryptCost: cfg.BcryptCost,
		fromAddr:   cfg.MailerFromAddress,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type RegisterResult struct {
	User   *repository.User
	Tokens TokenPair
}

// Register creates the account plus its default settings and signs the
// user straight in. Non-admin accounts get an employee code so an
// admin can link them later; admin accounts never carry one. The
// unique constraints on username/email are the duplicate gate.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, repository.CreateUserInput{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		IsAdmin:      input.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	settings := repository.Settings{UserID: user.ID, HourlyRate: 0, TextSize: defaultTextSize}
	if !input.IsAdmin {
		code, err := generateEmployeeCode()
		if err != nil {
			return nil, err
		}
		settings.EmployeeCode = &code
	}
	if _, err := s.store.CreateSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID, "is_admin", user.IsAdmin)
	return &RegisterResult{User: user, Tokens: *tokens}, nil
}

// Login accepts a username or an email address.
func (s *Service) Login(ctx context.Context, login, password string) (*RegisterResult, error) {
	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user logged in", "user_id", user.ID)
	return &RegisterResult{User: user, Tokens: *tokens}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// a fresh pair is issued, so a stolen token stops working after its
// first legitimate use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RegisterResult, error) {
	stored, err := s.store.GetRefreshToken(ctx, refreshToken, s.now())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrUnauthorized
	}
	user, err := s.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if err := s.store.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: user, Tokens: *tokens}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.store.DeleteRefreshToken(ctx, refreshToken)
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	return s.store.DeleteUserRefreshTokens(ctx, userID)
}

func (s *Service) Me(ctx context.Context, userID string) (*repository.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// ForgotPassword issues a one-hour single-use reset token and mails
// it. An unknown email is reported as success so the endpoint cannot
// be used to probe which addresses have accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	token, err := randomToken(resetTokenBytes)
	if err != nil {
		return err
	}
	if err := s.store.CreateResetToken(ctx, user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}
	msg := mailer.Message{
		To:      user.Email,
		From:    s.fromAddr,
		Subject: "Password reset",
		Body:    fmt.Sprintf("Hi %s,\n\nUse this token to reset your password within the next hour: %s\n", user.Username, token),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		slog.Error("failed to send reset mail", "error", err, "user_id", user.ID)
		return err
	}
	return nil
}

// ResetPassword consumes the token, rewrites the hash and revokes all
// refresh tokens so existing sessions cannot outlive the reset.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	consumed, err := s.store.ConsumeResetToken(ctx, token, s.now())
	if err != nil {
		return err
	}
	if consumed == nil {
		return ErrInvalidResetToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, consumed.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.store.DeleteUserRefreshTokens(ctx, consumed.UserID); err != nil {
		return err
	}
	slog.Info("password reset", "user_id", consumed.UserID)
	return nil
}

// CleanExpired removes dead refresh and reset tokens. Run from the
// maintenance CLI, not from request handling.
func (s *Service) CleanExpired(ctx context.Context) (int64, error) {
	now := s.now()
	refresh, err := s.store.DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		return 0, err
	}
	reset, err := s.store.DeleteExpiredResetTokens(ctx, now)
	if err != nil {
		return refresh, err
	}
	return refresh + reset, nil
}

// BackfillEmployeeCodes assigns codes to non-admin accounts that are
// missing one, e.g. accounts created before codes existed. Returns how
// many codes were written.
func (s *Service) BackfillEmployeeCodes(ctx context.Context) (int, error) {
	missing, err := s.store.ListSettingsMissingEmployeeCode(ctx)
	if err != nil {
		return 0, err
	}
	assigned := 0
	for _, row := range missing {
		user, err := s.store.GetUserByID(ctx, row.UserID)
		if err != nil {
			return assigned, err
		}
		if user == nil || user.IsAdmin {
			continue
		}
		code, err := generateEmployeeCode()
		if err != nil {
			return assigned, err
		}
		if err := s.store.SetEmployeeCode(ctx, row.UserID, code); err != nil {
			return assigned, err
		}
		assigned++
	}
	return assigned, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *repository.User) (*TokenPair, error) {
	now := s.now()
	access, err := s.issueAccessToken(user.ID, user.Username, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := randomToken(refreshTokenBytes)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRefreshToken(ctx, user.ID, refresh, now.Add(s.refreshTTL)); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.accessTTL),
	}, nil
}

func validateRegistration(input RegisterInput) error {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return &ValidationError{Message: "username, email, and password are required"}
	}
	if len(input.Username) < minUsernameLength {
		return &ValidationError{Message: fmt.Sprintf("username must be at least %d characters", minUsernameLength)}
	}
	if len(input.Password) < minPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	if !emailPattern.MatchString(input.Email) {
		return &ValidationError{Message: "invalid email format"}
	}
	return nil
}
