// Package services contains server-side business logic. This file implements
// UserService, which handles signup, login, password reset issuance and
// redemption, and profile updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
)

// Mailer delivers a password-reset link to an address. Implementations
// may fall back to logging the link when delivery is impossible.
type Mailer interface {
	SendResetLink(ctx context.Context, to string, link string) error
}

// Profile is the public-safe projection of an account. It never carries
// the password hash.
type Profile struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  *string `json:"address"`
	Gender   *string `json:"gender"`
	Age      *int    `json:"age"`
}

// LoginResult bundles a session bearer token with the account projection.
type LoginResult struct {
	AccessToken string
	User        Profile
}

// UserService orchestrates the authentication and credential-lifecycle flows:
// - Signup: create accounts
// - Login: verify credentials and mint session tokens
// - ForgotPassword: issue single-purpose reset tokens and mail reset links
// - ResetPassword: redeem reset tokens exactly once
// - UpdateProfile: partial profile mutations
type UserService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	tokens               *auth.TokenService
	hasher               *auth.PasswordHasher
	mailer               Mailer
	logger               logging.Logger
	sessionTokenValidity time.Duration
	resetTokenValidity   time.Duration
	frontendBaseURL      string
}

// NewUserService constructs a UserService using repositories, the mail
// collaborator, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                   db,
		repomanager:          m,
		tokens:               auth.NewTokenService([]byte(cfg.SecretKey)),
		hasher:               auth.NewPasswordHasher(),
		mailer:               mailer,
		logger:               logger.With("module", "user_service"),
		sessionTokenValidity: cfg.SessionTokenValidityDuration,
		resetTokenValidity:   cfg.ResetTokenValidityDuration,
		frontendBaseURL:      strings.TrimRight(cfg.FrontendBaseURL, "/"),
	}
}

// Signup registers a new account. The store's uniqueness constraints are the
// authority: a duplicate slipping past the existence check still surfaces as
// ErrEmailTaken or ErrUsernameTaken, never as a double insert.
func (s *UserService) Signup(ctx context.Context, username, email, password, confirmPassword string) error {
	if password != confirmPassword {
		return common.ErrPasswordMismatch
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "signup lookup failed", "error", err.Error())
		return common.ErrorInternal
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return err
		}
		s.logger.Error(ctx, "signup create failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}

// Login verifies credentials and, on success, returns a session token and
// the account projection. A missing account and a wrong password both yield
// ErrInvalidCredentials so registered emails cannot be enumerated.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "login lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, "", s.sessionTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{AccessToken: token, User: projectUser(user)}, nil
}

// ForgotPassword issues a reset token and mails a reset link. The outcome is
// identical whether the email is registered or not, and whether delivery
// succeeded or not; a delivery failure is only logged.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// do not reveal that the address is unregistered
			return nil
		}
		s.logger.Error(ctx, "forgot-password lookup failed", "error", err.Error())
		return common.ErrorInternal
	}

	token, err := s.tokens.Issue(user.Email, auth.PurposePasswordReset, s.resetTokenValidity)
	if err != nil {
		return common.ErrorInternal
	}

	link := s.frontendBaseURL + "/reset-password?token=" + url.QueryEscape(token)

	if err := s.mailer.SendResetLink(ctx, user.Email, link); err != nil {
		s.logger.Error(ctx, "reset link delivery failed", "email", user.Email, "error", err.Error())
	}

	return nil
}

// ResetPassword redeems a reset token and commits a new password hash.
//
// The ledger is consulted before the token is decoded, so a replayed token
// reports ErrTokenAlreadyUsed even after its natural expiry. The consumption
// record is committed before the password update; a fault between the two
// burns the token without changing the password, never the reverse.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ledger := s.repomanager.UsedResetTokens(s.db)

	used, err := ledger.Exists(ctx, token)
	if err != nil {
		s.logger.Error(ctx, "ledger lookup failed", "error", err.Error())
		return common.ErrorInternal
	}
	if used {
		return common.ErrTokenAlreadyUsed
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if claims.Purpose != auth.PurposePasswordReset {
		return common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrAccountNotFound
		}
		s.logger.Error(ctx, "reset-password lookup failed", "error", err.Error())
		return common.ErrorInternal
	}

	if s.hasher.Verify(newPassword, user.PasswordHash) {
		return common.ErrSamePassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := ledger.Create(ctx, token, user.Email); err != nil {
		if errors.Is(err, common.ErrTokenAlreadyUsed) {
			return err
		}
		s.logger.Error(ctx, "ledger insert failed", "error", err.Error())
		return common.ErrorInternal
	}

	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error(ctx, "password update failed", "error", err.Error())
		return common.ErrorInternal
	}

	return nil
}

// UpdateProfile applies the provided fields to the account stored under
// email and returns the updated projection. Absent fields keep their prior
// values; an empty update succeeds and returns the current state.
func (s *UserService) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*Profile, error) {
	if upd.Address != nil {
		trimmed := strings.TrimSpace(*upd.Address)
		if !validAddress(trimmed) {
			return nil, common.ErrInvalidAddress
		}
		upd.Address = &trimmed
	}
	if upd.Age != nil && (*upd.Age < 1 || *upd.Age > 120) {
		return nil, common.ErrInvalidAge
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		s.logger.Error(ctx, "profile lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	var updated *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		if err := repoTx.UpdateProfile(ctx, user.ID, upd); err != nil {
			return err
		}
		var readErr error
		updated, readErr = repoTx.GetByID(ctx, user.ID)
		return readErr
	}); err != nil {
		s.logger.Error(ctx, "profile update failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	profile := projectUser(updated)
	return &profile, nil
}

// --- helpers below ---

func projectUser(u *models.User) Profile {
	return Profile{
		Username: u.Username,
		Email:    u.Email,
		Address:  u.Address,
		Gender:   u.Gender,
		Age:      u.Age,
	}
}

// validAddress reports whether a trimmed address is 5-255 characters long
// and contains at least one alphanumeric character.
func validAddress(s string) bool {
	if len(s) < 5 || len(s) > 255 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
