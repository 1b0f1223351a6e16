package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/membergate/membergate/internal/crypto"
	"github.com/membergate/membergate/internal/model"
	"github.com/membergate/membergate/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already in use")
)

// UserStore is the credential storage the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService handles registration and login.
type AuthService struct {
	store  UserStore
	tokens *crypto.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *crypto.TokenManager) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Register creates a new user account and returns the stored user (without
// its password hash) and a fresh token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if req.Email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	// Early exit for a clean error; the unique index remains the real
	// guarantee if another request races this check.
	if _, err := s.store.GetByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:            req.Email,
		PasswordHash:     hash,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		MembershipCode:   req.MembershipCode,
		MembershipLevel:  req.MembershipLevel,
		RegistrationDate: req.RegistrationDate,
		PointsBalance:    req.PointsBalance,
	}
	if user.MembershipCode == "" {
		user.MembershipCode = uuid.NewString()
	}
	if user.RegistrationDate == "" {
		user.RegistrationDate = time.Now().UTC().Format("2006-01-02")
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: model.NewUserResponse(user), Token: token}, nil
}

// Login authenticates a user and returns the user and a fresh token. An
// unknown email and a wrong password fail identically so callers cannot tell
// which one occurred.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{User: model.NewUserResponse(user), Token: token}, nil
}

// GetUser retrieves a user by ID as response-safe data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}

	return model.NewUserResponse(user), nil
}
