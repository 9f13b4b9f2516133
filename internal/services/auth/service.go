package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/utils"
	"pazar/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = &domainerrors.DomainError{
	Kind:    domainerrors.KindForbidden,
	Code:    "INVALID_TOKEN",
	Message: "invalid or expired token",
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	// Authenticate resolves access-token claims to a live, unbanned user.
	Authenticate(ctx context.Context, claims *models.UserClaims) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type service struct {
	users  repositories.UserRepository
	tokens *utils.TokenIssuer
}

func NewService(users repositories.UserRepository, tokens *utils.TokenIssuer) Service {
	if users == nil {
		panic("user repository is required")
	}
	if tokens == nil {
		panic("token issuer is required")
	}
	return &service{
		users:  users,
		tokens: tokens,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	v := validation.New()
	v.Struct(input)
	v.Check(len(input.Password) <= validation.MaxPasswordLength, "password",
		"must not be more than 72 bytes long")
	if err := v.Err(domainerrors.ErrInvalidRegistration); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:    input.Email,
		Password: string(hashedPassword),
		Name:     input.Name,
		Phone:    input.Phone,
		Role:     models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, domainerrors.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("component=auth msg=\"login failed\" reason=unknown_email")
			return nil, "", "", domainerrors.ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("component=auth msg=\"login failed\" reason=bad_password user_id=%d", user.ID)
		return nil, "", "", domainerrors.ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, "", "", domainerrors.ErrUserBanned
	}

	accessToken, refreshToken, err := s.tokens.GenerateTokens(claimsFor(user))
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ParseToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	user, err := s.Authenticate(ctx, claims)
	if err != nil {
		return "", "", err
	}
	return s.tokens.GenerateTokens(claimsFor(user))
}

func (s *service) Authenticate(ctx context.Context, claims *models.UserClaims) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken.WithMessage("session expired")
	}
	if user.IsBanned {
		return nil, domainerrors.ErrUserBanned
	}
	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	return user, err
}

func claimsFor(user *models.User) *models.UserClaims {
	return &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	}
}
