package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultBcryptCost is the work factor used when AccountConfig leaves it unset.
const DefaultBcryptCost = 10

// AccountService registers users, checks their credentials and resolves
// tokens back to users.
type AccountService struct {
	users     UserRepo
	tokens    TokenService
	cost      int
	dummyHash []byte
	now       func() time.Time
}

type AccountConfig struct {
	BcryptCost int
}

func NewAccountService(users UserRepo, tokens TokenService, cfg AccountConfig) (*AccountService, error) {
	if users == nil {
		return nil, errors.New("new account service: user repo is nil")
	}
	if tokens == nil {
		return nil, errors.New("new account service: token service is nil")
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("new account service: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// compared against when the email is unknown so both failure paths cost one bcrypt check
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("new account service: %w", err)
	}

	return &AccountService{
		users:     users,
		tokens:    tokens,
		cost:      cost,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

// Register creates a user and returns it with a fresh token. A taken email
// fails with ErrConflict.
func (s *AccountService) Register(ctx context.Context, r Registration) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}

	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)

	if r.Name == "" || r.Email == "" || r.Password == "" {
		return Session{}, fmt.Errorf("register: %w: name, email and password are required", ErrInvalidInput)
	}
	if err := validate.Var(r.Email, "email"); err != nil {
		return Session{}, fmt.Errorf("register: %w: malformed email", ErrInvalidInput)
	}

	hash, err := HashPassword(r.Password, s.cost)
	if err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}

	u, err := s.users.Create(ctx, User{
		ID:           uuid.New(),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return Session{}, fmt.Errorf("register %s: %w", r.Email, err)
	}

	return s.session(u)
}

// Authenticate checks email and password. An unknown email and a wrong
// password both fail with ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, fmt.Errorf("authenticate: %w", err)
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return Session{}, fmt.Errorf("authenticate: %w", ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("authenticate: %w", err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		return Session{}, fmt.Errorf("authenticate: %w", ErrInvalidCredentials)
	}

	return s.session(u)
}

// VerifyToken resolves a bearer token to its user. A token whose user no
// longer exists is rejected like any other invalid token.
func (s *AccountService) VerifyToken(ctx context.Context, token string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, fmt.Errorf("verify token: %w", err)
	}

	id, err := s.tokens.Verify(token)
	if err != nil {
		return User{}, fmt.Errorf("verify token: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("verify token: unknown subject %s: %w", id, ErrTokenInvalid)
		}
		return User{}, fmt.Errorf("verify token: %w", err)
	}

	return u, nil
}

// FindByEmail returns the user with the given email.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, fmt.Errorf("find user %s: %w", email, err)
	}
	return u, nil
}

func (s *AccountService) session(u User) (Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w: %w", ErrInternal, err)
	}
	return Session{Token: token, User: u}, nil
}

// HashPassword returns the bcrypt hash of password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("hash password: %w: password longer than 72 bytes", ErrInvalidInput)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
