package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/validate"
)

// Sink receives audit entries produced by account operations. Record
// persists asynchronously; Published only announces an entry that was
// already committed.
type Sink interface {
	Record(e model.AuditEntry) bool
	Published(e model.AuditEntry) bool
}

// Service implements login, registration, logout and profile management.
type Service struct {
	DB     *sql.DB
	Tokens *Issuer
	Audit  Sink
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login verifies credentials and issues a token. Every attempt is audited;
// failed attempts carry no actor.
func (s *Service) Login(ctx context.Context, username, password string, meta model.RequestMeta) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, model.Validation("username and password required", "username", "password")
	}

	u, err := store.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		CheckPasswordTimingSafe(password)
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		slog.Warn("login failed", "username", username, "remote", meta.IP)
		s.record(model.AuditEntry{
			Action:    model.ActionLoginFailed,
			Details:   map[string]any{"username": username},
			IPAddress: meta.IP,
			Status:    model.AuditFailure,
		})
		return nil, model.ErrBadCredentials
	}

	token, err := s.Tokens.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user", u.Username)
	s.record(model.AuditEntry{
		UserID:    u.ID,
		Action:    model.ActionUserLogin,
		Details:   map[string]any{"username": u.Username},
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	})
	return &LoginResult{Token: token, User: u}, nil
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
}

// Register creates an account with the default role and no bases.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta model.RequestMeta) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := store.CreateUser(ctx, s.DB, store.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Roles:        []model.Role{model.DefaultRole},
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user", u.Username)
	s.record(model.AuditEntry{
		UserID:    u.ID,
		Action:    model.ActionUserRegistered,
		Details:   map[string]any{"username": u.Username},
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	})
	return u, nil
}

// Authenticate resolves a bearer token to the caller's current identity.
// Roles and bases are read from the database, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Identity, *Claims, error) {
	claims, err := s.Tokens.ValidateToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, nil, model.Unauthenticated("token expired")
	}
	if err != nil {
		return nil, nil, model.Unauthenticated("invalid token")
	}
	if claims.ID != "" {
		revoked, err := store.IsTokenRevoked(ctx, s.DB, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, model.Unauthenticated("token has been revoked")
		}
	}

	id, err := store.LoadIdentity(ctx, s.DB, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if id == nil {
		return nil, nil, model.Unauthenticated("user no longer exists")
	}
	return id, claims, nil
}

// Logout revokes the token described by claims until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *Claims, meta model.RequestMeta) error {
	if claims == nil || claims.ID == "" {
		return model.Unauthenticated("not authenticated")
	}
	expires := time.Now().Add(s.Tokens.Expiry())
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(ctx, s.DB, claims.ID, expires); err != nil {
		return err
	}

	slog.Info("user logged out", "user", claims.Username)
	s.record(model.AuditEntry{
		UserID:    claims.UserID,
		Action:    model.ActionUserLogout,
		Details:   map[string]any{"username": claims.Username},
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	})
	return nil
}

// Profile returns the caller's account.
func (s *Service) Profile(ctx context.Context, id *model.Identity) (*model.User, error) {
	if id == nil {
		return nil, model.Unauthenticated("not authenticated")
	}
	u, err := store.GetUser(ctx, s.DB, id.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NotFound("user")
	}
	return u, nil
}

// ProfileInput changes the caller's display name or email. Empty fields are
// left unchanged.
type ProfileInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile applies in to the caller's account.
func (s *Service) UpdateProfile(ctx context.Context, id *model.Identity, in ProfileInput, meta model.RequestMeta) (*model.User, error) {
	if id == nil {
		return nil, model.Unauthenticated("not authenticated")
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FullName == "" && in.Email == "" {
		return nil, model.Validation("nothing to update", "fullName", "email")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	entry := &model.AuditEntry{
		UserID:    id.UserID,
		Action:    model.ActionProfileUpdated,
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	}
	u, err := store.UpdateProfile(ctx, s.DB, id.UserID, in.FullName, in.Email, entry)
	if err != nil {
		return nil, err
	}
	if s.Audit != nil {
		s.Audit.Published(*entry)
	}
	return u, nil
}

// PasswordInput changes the caller's password.
type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the caller's password after verifying the current
// one.
func (s *Service) ChangePassword(ctx context.Context, id *model.Identity, in PasswordInput, meta model.RequestMeta) error {
	if id == nil {
		return model.Unauthenticated("not authenticated")
	}
	if in.CurrentPassword == "" {
		return model.Validation("current password required", "currentPassword")
	}
	if err := model.ValidatePassword(in.NewPassword); err != nil {
		return err
	}

	u, err := store.GetUser(ctx, s.DB, id.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return model.NotFound("user")
	}
	if !CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return model.Unauthenticated("current password is incorrect")
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	entry := &model.AuditEntry{
		UserID:    id.UserID,
		Action:    model.ActionPasswordChanged,
		Details:   map[string]any{"username": u.Username},
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	}
	if err := store.UpdateUserPassword(ctx, s.DB, id.UserID, hash, entry); err != nil {
		return err
	}
	slog.Info("user changed own password", "user", u.Username)
	if s.Audit != nil {
		s.Audit.Published(*entry)
	}
	return nil
}

func (s *Service) record(e model.AuditEntry) {
	if s.Audit != nil {
		s.Audit.Record(e)
	}
}
