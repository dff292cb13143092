package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/hash"
	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/internal/uow"
	"github.com/Skotchmaster/unimart/internal/validators"
	"github.com/Skotchmaster/unimart/pkg/tokens"
)

var errBadCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)

type AuthService struct {
	UoW           *uow.Factory
	AccessSecret  []byte
	RefreshSecret []byte
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Telephone       string
	FirstName       string
	LastName        string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsAdmin      bool
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validators.Email(in.Email); err != nil {
		return nil, err
	}
	if err := validators.Password(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if err := validators.Telephone(in.Telephone); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if in.Telephone != "" {
		user.Telephone = &in.Telephone
	}

	err = s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		exists, err := u.Users.ExistsByEmailOrTelephone(ctx, user.Email, user.Telephone)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("user already exists: %w", apperr.ErrConflict)
		}
		if _, err := u.Users.Add(ctx, user); err != nil {
			if errors.Is(err, apperr.ErrConstraintViolation) {
				return fmt.Errorf("user already exists: %w", apperr.ErrConflict)
			}
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var res *LoginResult
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		user, err := u.Users.GetByEmail(ctx, email)
		if errors.Is(err, apperr.ErrNotFound) {
			return errBadCredentials
		}
		if err != nil {
			return err
		}
		if !hash.CheckPassword(user.PasswordHash, password) || !user.IsActive {
			return errBadCredentials
		}

		if res, err = s.issue(ctx, u, user); err != nil {
			return err
		}
		if err := u.Users.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued in the same scope.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}

	var res *LoginResult
	err = s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		stored, err := u.Users.FindRefreshByJTI(ctx, claims.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("refresh token not found: %w", apperr.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		if stored.TokenHash != hash.Sha256Hex(refreshToken) || stored.UserID != uint(userID) {
			return fmt.Errorf("refresh token mismatch: %w", apperr.ErrUnauthorized)
		}
		if stored.Revoked || time.Now().After(stored.ExpiresAt) {
			return fmt.Errorf("refresh token expired or revoked: %w", apperr.ErrUnauthorized)
		}
		if err := u.Users.RevokeRefresh(ctx, claims.ID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("refresh token expired or revoked: %w", apperr.ErrUnauthorized)
			}
			return err
		}

		user, err := u.Users.Get(ctx, uint(userID), uint(userID))
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("user not found: %w", apperr.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		if res, err = s.issue(ctx, u, user); err != nil {
			return err
		}
		return u.Commit()
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		if err := u.Users.RevokeRefreshByHash(ctx, hash.Sha256Hex(refreshToken)); err != nil {
			return err
		}
		return u.Commit()
	})
}

func (s *AuthService) Me(ctx context.Context, id uint) (*models.User, error) {
	var user *models.User
	err := s.UoW.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		user, err = u.Users.Get(ctx, id, id)
		return err
	})
	return user, err
}

func (s *AuthService) issue(ctx context.Context, u *uow.UnitOfWork, user *models.User) (*LoginResult, error) {
	subject := strconv.FormatUint(uint64(user.ID), 10)
	now := time.Now().UTC()

	accessExp := now.Add(tokens.AccessTTL)
	access, err := tokens.NewAccessToken(s.AccessSecret, subject, user.Role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := now.Add(tokens.RefreshTTL)
	refresh, jti, err := tokens.NewRefreshToken(s.RefreshSecret, subject, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := u.Users.AddRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: hash.Sha256Hex(refresh),
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.Role == models.RoleAdmin || user.IsSuperuser,
		User:         user,
	}, nil
}
