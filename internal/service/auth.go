package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/hash"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
	Events        events.Publisher
	Now           func() time.Time
}

type RegisterForm struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type AccountForm struct {
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name"  form:"last_name"`
	Email     *string `json:"email"      form:"email"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, f RegisterForm) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth", "username", f.Username)

	f.Username = strings.TrimSpace(f.Username)
	var verr ValidationErrors
	if f.Username == "" {
		verr = append(verr, FieldError{Field: "username", Err: ErrRequired})
	} else if len(f.Username) > 150 {
		verr = append(verr, FieldError{Field: "username", Err: ErrTooLong})
	}
	if f.Password == "" {
		verr = append(verr, FieldError{Field: "password", Err: ErrRequired})
	} else if len(f.Password) > hash.MaxPasswordLen {
		verr = append(verr, FieldError{Field: "password", Err: ErrTooLong})
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			verr = append(verr, FieldError{Field: "email", Err: err})
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     f.Username,
		Email:        f.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Info("register_failed", "reason", "user_exists")
			return nil, fmt.Errorf("username %q: %w", f.Username, ErrConflict)
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUser, idKey(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

// Login checks the credentials and stores a fresh refresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth", "username", username)

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("login_failed", "reason", "unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Info("login_failed", "reason", "bad_password")
		return nil, ErrInvalidCredentials
	}

	pair, err := tokens.Issue(user.ID, user.Role, s.now(), s.AccessSecret, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefresh(ctx, refreshRow(pair)); err != nil {
		return nil, err
	}

	l.Info("user_logged_in", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUser, idKey(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return pair, nil
}

// Refresh rotates the refresh token. The old one is revoked and can not be used again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Info("refresh_failed", "reason", "bad_token", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Repo.GetUser(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	pair, err := tokens.Issue(user.ID, user.Role, s.now(), s.AccessSecret, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefresh(ctx, claims.ID, refreshRow(pair)); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("refresh_failed", "reason", "revoked", "user_id", user.ID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	l.Debug("refresh_rotated", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefresh(ctx, tokens.Sha256Hex(refreshToken))
}

func (s *AuthService) Account(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, userID uint, f AccountForm) (*models.User, error) {
	fields := map[string]any{}
	var verr ValidationErrors
	if f.FirstName != nil {
		if len(*f.FirstName) > 150 {
			verr = append(verr, FieldError{Field: "first_name", Err: ErrTooLong})
		}
		fields["first_name"] = strings.TrimSpace(*f.FirstName)
	}
	if f.LastName != nil {
		if len(*f.LastName) > 150 {
			verr = append(verr, FieldError{Field: "last_name", Err: ErrTooLong})
		}
		fields["last_name"] = strings.TrimSpace(*f.LastName)
	}
	if f.Email != nil {
		email := strings.TrimSpace(*f.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				verr = append(verr, FieldError{Field: "email", Err: err})
			}
		}
		fields["email"] = email
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	u, err := s.Repo.UpdateAccount(ctx, userID, fields)
	if err != nil {
		return nil, notFound(err, "user")
	}
	publish(ctx, s.Events, events.TopicUser, idKey(userID), map[string]any{
		"type":   "account_updated",
		"userID": userID,
	})
	return u, nil
}

func refreshRow(p *tokens.Pair) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:    p.UserID,
		Token:     tokens.Sha256Hex(p.RefreshToken),
		JTI:       p.RefreshJTI,
		ExpiresAt: p.RefreshExp.Unix(),
	}
}
