package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/example/booking-platform/internal/metrics"
)

// AccountRepository captures the persistence operations needed by the account service.
type AccountRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	UpdateUser(ctx context.Context, user User, passwordHash *string) (User, error)
	// DeleteUser removes the user together with their sessions, guest
	// bookings, and owned calendar (including its slots and bookings).
	DeleteUser(ctx context.Context, id string) error
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// AccountService orchestrates signup, profile management, and unregistration.
type AccountService struct {
	accounts     AccountRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(accounts AccountRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time) *AccountService {
	return NewAccountServiceWithLogger(accounts, hash, idGenerator, now, nil)
}

// NewAccountServiceWithLogger constructs an AccountService with a specified logger.
func NewAccountServiceWithLogger(accounts AccountRepository, hash PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AccountService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return HashPassword(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		accounts:     accounts,
		hashPassword: hash,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Signup validates the payload and persists a new user account.
func (s *AccountService) Signup(ctx context.Context, params SignupParams) (user User, err error) {
	if s == nil {
		return User{}, fmt.Errorf("AccountService is nil")
	}
	if s.accounts == nil {
		return User{}, fmt.Errorf("account repository not configured")
	}

	normalized := normalizeSignup(params)

	logger := s.loggerWith(ctx, "Signup", "username", normalized.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "signup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		metrics.ObserveSignup()
		logger.With("user_id", user.ID).InfoContext(ctx, "user signed up")
	}()

	if vErr := validateSignup(normalized); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hashPassword(normalized.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user = User{
		ID:          s.idGenerator(),
		Username:    normalized.Username,
		Email:       normalized.Email,
		DisplayName: normalized.DisplayName,
		IsHost:      normalized.IsHost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	user, err = s.accounts.CreateUser(ctx, user, hash)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UserDetail returns the public account record for a username.
func (s *AccountService) UserDetail(ctx context.Context, username string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AccountService is nil")
	}
	if s.accounts == nil {
		return User{}, fmt.Errorf("account repository not configured")
	}

	user, err := s.accounts.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Me returns the authenticated principal's account record.
func (s *AccountService) Me(ctx context.Context, principal Principal) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AccountService is nil")
	}
	if principal.UserID == "" {
		return User{}, ErrUnauthorized
	}
	return s.accounts.GetUser(ctx, principal.UserID)
}

// UpdateProfile applies the provided patch fields to the authenticated user.
// Absent fields are left untouched; the patch must name at least one field.
func (s *AccountService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (user User, err error) {
	if s == nil {
		return User{}, fmt.Errorf("AccountService is nil")
	}
	if params.Principal.UserID == "" {
		return User{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "user_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	patch := params.Patch
	if patch.Email == nil && patch.DisplayName == nil && patch.Password == nil {
		vErr := &ValidationError{}
		vErr.add("patch", "at least one field is required")
		return User{}, vErr
	}

	if vErr := validatePatch(patch); vErr.HasErrors() {
		return User{}, vErr
	}

	existing, err := s.accounts.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		return User{}, err
	}

	updated := existing
	if patch.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.DisplayName != nil {
		updated.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}

	var newHash *string
	if patch.Password != nil {
		hash, hashErr := s.hashPassword(*patch.Password)
		if hashErr != nil {
			return User{}, hashErr
		}
		newHash = &hash
	}

	updated.UpdatedAt = s.now()
	user, err = s.accounts.UpdateUser(ctx, updated, newHash)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Unregister deletes the authenticated user's account and all dependent
// records in one transaction.
func (s *AccountService) Unregister(ctx context.Context, principal Principal) error {
	if s == nil {
		return fmt.Errorf("AccountService is nil")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Unregister", "user_id", principal.UserID)
	if err := s.accounts.DeleteUser(ctx, principal.UserID); err != nil {
		logger.ErrorContext(ctx, "unregister failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "user unregistered")
	return nil
}

func normalizeSignup(params SignupParams) SignupParams {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.DisplayName = strings.TrimSpace(params.DisplayName)
	if params.DisplayName == "" {
		params.DisplayName = randomDisplayName(8)
	}
	return params
}

func validateSignup(params SignupParams) *ValidationError {
	vErr := &ValidationError{}

	if n := len(params.Username); n < 4 || n > 40 {
		vErr.add("username", "username must be 4 to 40 characters")
	}

	if params.Email == "" || len(params.Email) > 128 {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(params.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if n := len(params.DisplayName); n < 4 || n > 40 {
		vErr.add("display_name", "display name must be 4 to 40 characters")
	}

	if n := len(params.Password); n < 8 || n > 128 {
		vErr.add("password", "password must be 8 to 128 characters")
	} else if params.Password != params.PasswordAgain {
		vErr.add("password_again", "passwords do not match")
	}

	return vErr
}

func validatePatch(patch UserPatch) *ValidationError {
	vErr := &ValidationError{}

	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" || len(email) > 128 {
			vErr.add("email", "email is required")
		} else if _, err := mail.ParseAddress(email); err != nil {
			vErr.add("email", "email is invalid")
		}
	}

	if patch.DisplayName != nil {
		if n := len(strings.TrimSpace(*patch.DisplayName)); n < 4 || n > 40 {
			vErr.add("display_name", "display name must be 4 to 40 characters")
		}
	}

	if patch.Password != nil {
		if n := len(*patch.Password); n < 8 || n > 128 {
			vErr.add("password", "password must be 8 to 128 characters")
		} else if patch.PasswordAgain == nil || *patch.Password != *patch.PasswordAgain {
			vErr.add("password_again", "passwords do not match")
		}
	}

	return vErr
}

const displayNameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomDisplayName(length int) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(displayNameAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = 'x'
			continue
		}
		out[i] = displayNameAlphabet[idx.Int64()]
	}
	return string(out)
}
