package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mervel/storefront/accounts/domain"
	"github.com/mervel/storefront/accounts/security"
	"github.com/mervel/storefront/validations"
	"github.com/sirupsen/logrus"
)

type AuthService struct {
	repo   domain.UserRepository
	tokens *security.Tokens
}

func NewAuthService(repo domain.UserRepository, tokens *security.Tokens) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Login verifies credentials and returns a JWT token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email, err := validations.ValidateCredentials(email, password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials // Do not reveal if user exists
		}
		return "", nil, err
	}
	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, domain.ErrInactive
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		logrus.WithError(err).Warnf("[AUTH] Failed to record last login for %s", user.ID)
	}
	return token, user, nil
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (string, *domain.User, error) {
	email, err := validations.ValidateCredentials(email, password)
	if err != nil {
		return "", nil, err
	}
	if err := validations.ValidateFullName(fullName); err != nil {
		return "", nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return "", nil, domain.ErrEmailTaken
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(email, hash, strings.TrimSpace(fullName), domain.RoleCustomer)
	if err := s.repo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	logrus.Infof("[AUTH] Customer %s registered", user.ID)
	return token, user, nil
}

// Authenticate verifies a token and returns the associated active user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInactive
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin, or resets its password and role when it exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := validations.ValidateCredentials(email, password)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = domain.NewUser(email, hash, "Administrator", domain.RoleAdmin)
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
		logrus.Infof("[AUTH] Admin %s created", email)
	case err != nil:
		return nil, err
	default:
		user.PasswordHash = hash
		user.Role = domain.RoleAdmin
		user.Active = true
		if err := s.repo.Save(ctx, user); err != nil {
			return nil, err
		}
		logrus.Infof("[AUTH] Admin %s updated", email)
	}
	return user, nil
}
