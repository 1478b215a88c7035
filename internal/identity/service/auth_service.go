package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	historydomain "auth-session-service/internal/history/domain"
	"auth-session-service/internal/security"
	sessiondomain "auth-session-service/internal/session/domain"
	userdomain "auth-session-service/internal/user/domain"
	userrepo "auth-session-service/internal/user/repository"
)

const instrumentationName = "auth-session-service/identity"

// Sentinel errors for the auth service; the HTTP handler maps them to status codes.
var (
	ErrMissingDeviceHeaders = errors.New("missing required headers")
	ErrInvalidInput         = errors.New("input payload validation failed")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrSessionNotFound      = errors.New("session not found")
	ErrUserNotFound         = errors.New("user not found")
)

// AuthResult is the outcome of a successful flow. Status is the HTTP status
// the flow terminates with: 201 for register and refresh, 200 for login.
type AuthResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"-"`
	Status       int    `json:"-"`
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
}

// RoleNamer resolves the role names carried in issued credentials.
type RoleNamer interface {
	NamesByUser(ctx context.Context, userID string) ([]string, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	FindByRefreshToken(ctx context.Context, refreshToken string, device sessiondomain.Device) (*sessiondomain.Session, error)
}

// HistoryAppender records one history entry per issued session.
type HistoryAppender interface {
	Append(ctx context.Context, userID string, device sessiondomain.Device) (*historydomain.Entry, error)
}

// AuthService implements register, login and refresh. It keeps no per-request
// state; every flow is a single call returning an AuthResult or an error.
type AuthService struct {
	users      UserRepo
	roles      RoleNamer
	sessions   SessionRepo
	history    HistoryAppender
	hasher     *security.Hasher
	codec      *security.TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
	tracer     trace.Tracer
	completed  metric.Int64Counter
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithLogger sets the logger used for flow outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(s *AuthService) { s.logger = l }
}

// WithClock overrides the time source used for persisted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService returns an AuthService with the given dependencies. Tracing
// and metrics use the global otel providers.
func NewAuthService(
	users UserRepo,
	roles RoleNamer,
	sessions SessionRepo,
	history HistoryAppender,
	hasher *security.Hasher,
	codec *security.TokenCodec,
	accessTTL, refreshTTL time.Duration,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		users:      users,
		roles:      roles,
		sessions:   sessions,
		history:    history,
		hasher:     hasher,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     slog.Default(),
		now:        time.Now,
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	counter, err := otel.Meter(instrumentationName).Int64Counter("auth.flow.completed",
		metric.WithDescription("Completed authentication flows by flow and outcome."))
	if err != nil {
		s.logger.Warn("auth flow counter unavailable", "error", err)
		counter, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("auth.flow.completed")
	}
	s.completed = counter
	return s
}

// Register creates the user and issues a first credential pair.
func (s *AuthService) Register(ctx context.Context, device sessiondomain.Device, in RegisterInput) (*AuthResult, error) {
	return s.run(ctx, "register", device, func(ctx context.Context) (*AuthResult, error) {
		in.Username = strings.TrimSpace(in.Username)
		in.Email = strings.TrimSpace(in.Email)
		if in.Username == "" || in.Password == "" || in.Email == "" {
			return nil, ErrInvalidInput
		}
		if len(in.Password) > security.MaxPasswordBytes {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, security.ErrPasswordTooLong)
		}
		existing, err := s.users.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, in.Username)
		}
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		user := &userdomain.User{
			ID:           uuid.NewString(),
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, userrepo.ErrUsernameExists) {
				return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, in.Username)
			}
			return nil, err
		}
		return s.issue(ctx, user, device, http.StatusCreated)
	})
}

// Login verifies the password and issues a credential pair. Unknown users,
// wrong passwords and inactive users all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, device sessiondomain.Device, username, password string) (*AuthResult, error) {
	return s.run(ctx, "login", device, func(ctx context.Context) (*AuthResult, error) {
		username = strings.TrimSpace(username)
		if username == "" || password == "" {
			return nil, ErrInvalidInput
		}
		user, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil || !user.IsActive || !s.hasher.Verify(user.PasswordHash, password) {
			return nil, ErrInvalidCredentials
		}
		return s.issue(ctx, user, device, http.StatusOK)
	})
}

// Refresh exchanges a refresh credential for a new pair. The credential must
// verify and match a session issued to the same device. The matched session
// is left in place, so a refresh credential stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, device sessiondomain.Device, refreshToken string) (*AuthResult, error) {
	return s.run(ctx, "refresh", device, func(ctx context.Context) (*AuthResult, error) {
		if refreshToken == "" {
			return nil, ErrInvalidInput
		}
		if _, err := s.codec.Decode(refreshToken); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
		}
		sess, err := s.sessions.FindByRefreshToken(ctx, refreshToken, device)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, ErrSessionNotFound
		}
		user, err := s.users.GetByID(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil || !user.IsActive {
			return nil, ErrSessionNotFound
		}
		return s.issue(ctx, user, device, http.StatusCreated)
	})
}

// ChangePassword replaces the user's password after verifying the old one.
// A wrong old password fails with ErrInvalidCredentials.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, change userdomain.PasswordChange) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.change_password")
	defer span.End()

	if err := change.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !s.hasher.Verify(user.PasswordHash, change.OldPassword) {
		span.SetStatus(codes.Error, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	hash, err := s.hashPassword(change.NewPassword)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.UpdatedAt = now
	s.logger.InfoContext(ctx, "password changed", "user_id", user.ID)
	return user, nil
}

// hashPassword reports passwords the hasher refuses as ErrInvalidInput.
func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrEmptyPassword) || errors.Is(err, security.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return hash, err
}

// issue mints the credential pair, then writes the session and its history entry.
// The two writes are not transactional; a failed history append leaves the session in place.
func (s *AuthService) issue(ctx context.Context, user *userdomain.User, device sessiondomain.Device, status int) (*AuthResult, error) {
	roles, err := s.roles.NamesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	claims := security.IdentityClaims(user.ID, roles, user.IsSuper)
	access, err := s.codec.Encode(claims, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("encode access token: %w", err)
	}
	refresh, err := s.codec.Encode(claims, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("encode refresh token: %w", err)
	}

	now := s.now().UTC()
	if err := s.sessions.Create(ctx, &sessiondomain.Session{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		Fingerprint:      device.Fingerprint,
		UserAgent:        device.UserAgent,
		RefreshTokenHash: security.TokenDigest(refresh),
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		return nil, err
	}
	if _, err := s.history.Append(ctx, user.ID, device); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Status:       status,
	}, nil
}

// run checks the device headers, then executes fn inside a span and records the outcome.
func (s *AuthService) run(ctx context.Context, flow string, device sessiondomain.Device, fn func(context.Context) (*AuthResult, error)) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth."+flow, trace.WithAttributes(attribute.String("auth.flow", flow)))
	defer span.End()

	var res *AuthResult
	var err error
	if !device.Complete() {
		err = ErrMissingDeviceHeaders
	} else {
		res, err = fn(ctx)
	}

	outcome := Outcome(err)
	s.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
	if err != nil {
		span.SetStatus(codes.Error, outcome)
		level := slog.LevelInfo
		if outcome == "error" {
			level = slog.LevelError
			span.RecordError(err)
		}
		s.logger.Log(ctx, level, "auth flow failed", "flow", flow, "outcome", outcome, "fingerprint", device.Fingerprint, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("auth.user_id", res.UserID))
	s.logger.InfoContext(ctx, "auth flow completed", "flow", flow, "user_id", res.UserID, "fingerprint", device.Fingerprint)
	return res, nil
}

// Outcome classifies err for metrics and logs. Unclassified errors are "error".
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingDeviceHeaders):
		return "missing_headers"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidRefreshToken):
		return "invalid_refresh_token"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	}
	return "error"
}
