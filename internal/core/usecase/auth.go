package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
)

// AuthUseCase registers accounts and exchanges credentials for bearer tokens.
type AuthUseCase struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
}

func NewAuthUseCase(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
) *AuthUseCase {
	return &AuthUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 8 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register user",
			errors.New("name, email and a password of at least 8 characters are required"))
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.WrapError(domain.ErrEmailTaken, "register user",
			fmt.Errorf("email %s", email))
	} else if !domain.IsKind(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login never reveals whether the email or the password was wrong.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrUserNotFound) {
			return "", nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("bad credentials"))
		}
		return "", nil, fmt.Errorf("fetch user by email: %w", err)
	}

	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("bad credentials"))
	}
	if user.Blocked {
		return "", nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("account blocked"))
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}
