package auth

import (
	"context"
	"errors"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const invalidCredentials = "Invalid credentials"

var ErrEmailTaken = errors.New("email already registered")

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	validate *govalidator.Validate
	logger   *zerolog.Logger
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", user.Email).Msg("user registered")
	return s.issue(user)
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if role == "" {
		role = model.UserRoleStaff
	}

	user := &model.User{
		Name:         name,
		Email:        model.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Validation("A user with this email already exists", ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// EnsureUser creates the account unless the email is already registered.
func (s *Service) EnsureUser(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	user, err := s.createUser(ctx, name, email, password, role)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	user, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.logger.Warn().Str("email", user.Email).Msg("failed login")
		return nil, apperrors.Unauthorized(invalidCredentials, err)
	}
	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{Token: token, User: user}, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token", err)
	}
	return claims, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = model.NormalizeEmail(*req.Email)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Validation("A user with this email already exists", ErrEmailTaken)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User", err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
