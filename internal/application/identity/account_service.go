package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrEmailTaken is returned when registering an email that already has an account
var ErrEmailTaken = shared.NewConflictError("EMAIL_TAKEN", "An account with this email already exists")

// AccountService handles registration, login and logout
type AccountService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AccountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a shop or buyer account
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	userType := identity.UserType(req.Type)
	if userType == identity.UserTypeAdmin {
		return nil, shared.NewValidationError("INVALID_USER_TYPE", "Operator accounts cannot be self-registered")
	}
	return s.createUser(ctx, req.Email, req.Password, userType, identity.Profile{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Company:    req.Company,
		Position:   req.Position,
	})
}

// CreateOperator creates an admin account. It is reachable from the operator CLI only.
func (s *AccountService) CreateOperator(ctx context.Context, email, password string) (*UserResponse, error) {
	return s.createUser(ctx, email, password, identity.UserTypeAdmin, identity.Profile{})
}

func (s *AccountService) createUser(ctx context.Context, email, password string, userType identity.UserType, profile identity.Profile) (*UserResponse, error) {
	user, err := identity.NewUser(email, password, userType, profile)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.RecordCreated()

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("type", user.Type.String()),
	)
	s.publishDomainEvents(ctx, user)

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login checks credentials and issues an access token
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.Int64("user_id", user.ID))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return nil, shared.NewAuthorizationError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	token, err := s.jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.Type.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError(shared.KindInternal, "INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))

	return &LoginResult{
		AccessToken: token.Token,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserResponse(user),
	}, nil
}

// Logout revokes the presented token until it would have expired
func (s *AccountService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to revoke token", zap.Int64("user_id", input.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.Int64("user_id", input.UserID))
	return nil
}

// GetUser returns an account by id
func (s *AccountService) GetUser(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *AccountService) publishDomainEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher != nil {
		if events := user.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish user events", zap.Error(err))
			}
		}
	}
	user.ClearDomainEvents()
}
