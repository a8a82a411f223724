package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/auth"
	"github.com/dmitrijs2005/focustodo/internal/server/config"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/validation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// WelcomeSender emails a newly registered user.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, userID, email, name string) (*Result, error)
}

// AccountService registers users, verifies passwords and issues and
// rotates token pairs backed by server-stored refresh tokens.
type AccountService struct {
	base
	welcome                      WelcomeSender
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAccountService(d Deps, cfg *config.Config, welcome WelcomeSender) *AccountService {
	return &AccountService{
		base:                         newBase(d),
		welcome:                      welcome,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the user with default preferences and signs them in. The
// welcome email is best effort.
func (s *AccountService) SignUp(ctx context.Context, email, password, name string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)
	if !validation.IsValidEmail(email) {
		return nil, nil, common.NewValidationError("email", msgInvalidEmail)
	}
	if !validation.IsValidPassword(password) {
		return nil, nil, common.NewValidationError("password", msgInvalidPassword)
	}
	name = validation.SanitizeText(name)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	var (
		user *models.User
		pair *TokenPair
	)
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Create(ctx, &models.User{
			ID:           newID(),
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			CreatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		if _, err := s.repomanager.Preferences(tx).GetOrCreate(ctx, models.DefaultPreferences(newID(), user.ID, now)); err != nil {
			return fmt.Errorf("error creating preferences: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user.ID, tx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	if s.welcome != nil {
		if _, err := s.welcome.SendWelcome(ctx, user.ID, user.Email, user.Name); err != nil {
			s.logger.Warn(ctx, "welcome email failed", "user_id", user.ID, "error", err)
		}
	}

	return user, pair, nil
}

// SignIn checks the password and returns a new TokenPair. Unknown emails
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.conn()).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, user.ID, s.conn())
}

// Refresh consumes a refresh token and returns a fresh TokenPair. The token
// is deleted in the same transaction that issues its successor, so a token
// can be exchanged at most once. Expired tokens are dropped and yield
// ErrRefreshTokenExpired.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)
	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			expired = true
			return nil
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// SignOut revokes the refresh token. Unknown tokens are ignored.
func (s *AccountService) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.conn()).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// SignOutAll revokes every refresh token of the caller. Access tokens
// already issued stay valid until they expire.
func (s *AccountService) SignOutAll(ctx context.Context) error {
	userID, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if err := s.repomanager.RefreshTokens(s.conn()).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	return nil
}

// Session returns the authenticated caller.
func (s *AccountService) Session(ctx context.Context) (*models.User, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.conn()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Authenticate verifies an access token and returns its user id.
func (s *AccountService) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *AccountService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, errors.Join(common.ErrInternal, err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, errors.Join(common.ErrInternal, err)
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
