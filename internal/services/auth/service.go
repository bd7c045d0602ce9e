package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/technova/storefront-api/internal/adapters/repository"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// Currencies validates currency codes.
type Currencies interface {
	Normalize(code string) (string, error)
}

type Session struct {
	User   models.User     `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (Session, error)
	Login(ctx context.Context, in models.LoginInput) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error)
	Me(ctx context.Context, userID primitive.ObjectID) (models.User, error)
	SetPreferredCurrency(ctx context.Context, userID primitive.ObjectID, code string) (models.User, error)
	// EnsureAdmin creates an admin account unless the email is already registered.
	EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error)
}

type service struct {
	users      repository.UserRepository
	tokens     *utils.TokenManager
	currencies Currencies
	cost       int
}

func NewService(users repository.UserRepository, tokens *utils.TokenManager, currencies Currencies) Service {
	return &service{users: users, tokens: tokens, currencies: currencies, cost: bcrypt.DefaultCost}
}

func (s *service) Register(ctx context.Context, in models.RegisterInput) (Session, error) {
	user, err := s.create(ctx, in.Name, in.Email, in.Password, models.RoleCustomer)
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *service) create(ctx context.Context, name, email, password, role string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Name:              strings.TrimSpace(name),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      string(hash),
		Role:              role,
		PreferredCurrency: "USD",
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, in models.LoginInput) (Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// Refresh issues a new pair for a valid refresh token. The role is re-read so
// a demoted user does not keep admin rights until the refresh token expires.
func (s *service) Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error) {
	claims, err := s.tokens.VerifyToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return utils.TokenPair{}, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return utils.TokenPair{}, utils.ErrInvalidToken
	}
	user, err := s.Me(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return utils.TokenPair{}, utils.ErrInvalidToken
	}
	if err != nil {
		return utils.TokenPair{}, err
	}
	return s.tokens.GenerateTokens(user.ID.Hex(), user.Role)
}

func (s *service) Me(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *service) SetPreferredCurrency(ctx context.Context, userID primitive.ObjectID, code string) (models.User, error) {
	normalized, err := s.currencies.Normalize(code)
	if err != nil {
		return models.User{}, err
	}
	if err := s.users.UpdatePreferredCurrency(ctx, userID, normalized); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("update currency: %w", err)
	}
	return s.Me(ctx, userID)
}

func (s *service) EnsureAdmin(ctx context.Context, name, email, password string) (models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, false, fmt.Errorf("find user: %w", err)
	}
	user, err := s.create(ctx, name, email, password, models.RoleAdmin)
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (s *service) session(user models.User) (Session, error) {
	tokens, err := s.tokens.GenerateTokens(user.ID.Hex(), user.Role)
	if err != nil {
		return Session{}, fmt.Errorf("generate tokens: %w", err)
	}
	return Session{User: user, Tokens: tokens}, nil
}
