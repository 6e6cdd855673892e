package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/hash"
	"github.com/kmoroz/storefront/internal/logging"
	"github.com/kmoroz/storefront/internal/mailer"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/tokens"
)

// UserStore is the slice of the repository the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUserRole(ctx context.Context, id uint, role string) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id uint, status string) (*models.User, error)
}

type AuthService struct {
	Store    UserStore
	Codec    *tokens.Codec
	Producer *events.Producer
	Mailer   *mailer.Client
}

type AuthResult struct {
	User     *models.User
	Token    string
	TokenExp time.Time
}

// Register creates a customer account and issues its first token. The role
// is fixed here: nothing a client sends can influence it.
func (s *AuthService) Register(ctx context.Context, name, email, password, phone, address string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("hash failed", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
		Status:       models.StatusActive,
		Phone:        phone,
		Address:      address,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, exp, err := s.Codec.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	// Welcome mail is advisory. It rides its own context so a slow mail
	// API cannot hold up or fail the registration.
	go func(email, name string) {
		mailCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Mailer.SendWelcome(mailCtx, email, name); err != nil {
			l.Warn("welcome mail failed", "email", email, "error", err)
		}
	}(user.Email, user.Name)

	return &AuthResult{User: user, Token: token, TokenExp: exp}, nil
}

// Login verifies credentials. Unknown email and wrong password collapse into
// one ErrInvalidCredentials so responses cannot leak which check failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, repo.ErrInvalidCredentials
		}
		l.Error("lookup failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, repo.ErrInvalidCredentials
	}

	token, exp, err := s.Codec.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	return &AuthResult{User: user, Token: token, TokenExp: exp}, nil
}

// ChangeRole is the only privilege elevation path. Callers gate it behind
// the admin filter; the role itself is validated against the closed set.
func (s *AuthService) ChangeRole(ctx context.Context, userID uint, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrUnknownRole
	}
	return s.Store.UpdateUserRole(ctx, userID, role)
}

func (s *AuthService) ChangeStatus(ctx context.Context, userID uint, status string) (*models.User, error) {
	if !models.ValidStatus(status) {
		return nil, ErrUnknownStatus
	}
	return s.Store.UpdateUserStatus(ctx, userID, status)
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", topic, "error", err)
	}
}
