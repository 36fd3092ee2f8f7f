package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
	"github.com/sonorousduck/foodtracker-backend/internal/utils/metrics"
)

// AuthService glues the collaborators together: subject lookup,
// credential verification, token issuance, revocation and auditing.
type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	passwords  *PasswordService
	csrf       *CSRFService
	revocation *RevocationService
	audit      *AuditService
	logger     *zap.Logger
}

// NewAuthService wires the auth glue.
func NewAuthService(
	users repository.UserRepository,
	tokens *TokenService,
	passwords *PasswordService,
	csrf *CSRFService,
	revocation *RevocationService,
	audit *AuditService,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		passwords:  passwords,
		csrf:       csrf,
		revocation: revocation,
		audit:      audit,
		logger:     logger,
	}
}

// Login authenticates credentials and issues a token set. Failures are
// reported uniformly as ErrInvalidCredentials so the response does not
// reveal whether the email exists.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, r *http.Request) (*models.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			s.auditLoginFailure(req.Email, r, "unknown email")
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.auditLoginFailure(req.Email, r, "inactive account")
		return nil, domainErrors.ErrInvalidCredentials
	}

	if !s.passwords.Compare(req.Password, user.PasswordHash) {
		s.auditLoginFailure(req.Email, r, "wrong password")
		return nil, domainErrors.ErrInvalidCredentials
	}

	result, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.LogEvent(AuditEvent{
		EventType: models.EventLoginSuccess,
		UserID:    &user.ID,
		Email:     &user.Email,
		Success:   true,
		Request:   r,
	})
	return result, nil
}

// Register creates a user and signs them in.
func (s *AuthService) Register(ctx context.Context, req models.CreateUserRequest, r *http.Request) (*models.AuthResult, error) {
	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(AuditEvent{
		EventType: models.EventRegister,
		UserID:    &user.ID,
		Email:     &user.Email,
		Success:   true,
		Request:   r,
	})
	return result, nil
}

// Refresh exchanges a valid refresh token for a fresh token set. The
// refresh token is rotated: the presented one stops working as soon as
// the exchange succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, r *http.Request) (*models.AuthResult, error) {
	user, err := s.users.FindByRefreshTokenHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			s.auditRefreshFailure(nil, r, "unknown refresh token")
			return nil, domainErrors.ErrInvalidRefreshToken
		}
		return nil, err
	}

	if user.RefreshTokenExpiresAt == nil || time.Now().After(*user.RefreshTokenExpiresAt) {
		s.auditRefreshFailure(&user.ID, r, "refresh token expired")
		return nil, domainErrors.ErrInvalidRefreshToken
	}
	if !user.IsActive {
		s.auditRefreshFailure(&user.ID, r, "inactive account")
		return nil, domainErrors.ErrUserInactive
	}

	result, err := s.signIn(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	s.audit.LogEvent(AuditEvent{
		EventType: models.EventTokenRefresh,
		UserID:    &user.ID,
		Email:     &user.Email,
		Success:   true,
		Request:   r,
	})
	return result, nil
}

// Logout revokes the presented access token and clears the stored
// refresh token. A failed revocation write is an error; the caller
// must not be told the token is dead while it still works.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string, r *http.Request) error {
	var userID *int64
	var email *string

	if accessToken != "" {
		expiresAt := time.Now().Add(s.tokens.AccessTokenTTL())
		var uid int64

		claims, err := s.tokens.ParseAccessToken(accessToken)
		if err == nil {
			if id, idErr := claims.UserID(); idErr == nil {
				uid = id
				userID = &uid
				email = &claims.Username
			}
			expiresAt = claims.ExpiresAt.Time
		}

		if err := s.revocation.Revoke(ctx, accessToken, uid, models.RevocationReasonLogout, expiresAt); err != nil {
			return err
		}
	}

	if refreshToken != "" {
		user, err := s.users.FindByRefreshTokenHash(ctx, HashToken(refreshToken))
		if err == nil {
			if clearErr := s.users.ClearRefreshToken(ctx, user.ID); clearErr != nil {
				s.logger.Error("failed to clear refresh token on logout",
					zap.Error(clearErr), zap.Int64("user_id", user.ID))
			}
			if userID == nil {
				userID = &user.ID
				email = &user.Email
			}
		} else if !errors.Is(err, domainErrors.ErrUserNotFound) {
			s.logger.Error("refresh token lookup failed on logout", zap.Error(err))
		}
	}

	s.audit.LogEvent(AuditEvent{
		EventType: models.EventLogout,
		UserID:    userID,
		Email:     email,
		Success:   true,
		Request:   r,
	})
	return nil
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	accessToken, _, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshDigest, refreshExpiry, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshDigest, refreshExpiry); err != nil {
		return nil, err
	}

	csrfToken, err := s.csrf.GenerateToken()
	if err != nil {
		return nil, err
	}

	return &models.AuthResult{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		UserID:       user.ID,
		Username:     user.Email,
		CSRFToken:    csrfToken,
	}, nil
}

func (s *AuthService) auditLoginFailure(email string, r *http.Request, reason string) {
	metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
	s.audit.LogEvent(AuditEvent{
		EventType: models.EventLoginFailure,
		Email:     &email,
		Success:   false,
		Request:   r,
		Metadata:  &models.AuthLogMetadata{Reason: reason},
	})
}

func (s *AuthService) auditRefreshFailure(userID *int64, r *http.Request, reason string) {
	metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
	s.audit.LogEvent(AuditEvent{
		EventType: models.EventTokenRefreshFailure,
		UserID:    userID,
		Success:   false,
		Request:   r,
		Metadata:  &models.AuthLogMetadata{Reason: reason},
	})
}
