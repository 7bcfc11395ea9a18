package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/apperr"
	"github.com/artem13815/finance/pkg/logging"
)

// DefaultRefreshTTL is used when NewAuthService is given a non-positive TTL.
const DefaultRefreshTTL = 30 * 24 * time.Hour

// accessTTL mirrors the issuer's fixed access-token lifetime for AuthResult.ExpiresAt.
const accessTTL = time.Hour

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	accounts   AccountRepository
	refresh    RefreshTokenStore
	tokens     TokenIssuer
	hasher     PasswordHasher
	refreshTTL time.Duration
	log        *logging.Logger
	now        func() time.Time
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(accounts AccountRepository, refresh RefreshTokenStore, tokens TokenIssuer, hasher PasswordHasher, refreshTTL time.Duration, log *logging.Logger) AuthUseCase {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		accounts:   accounts,
		refresh:    refresh,
		tokens:     tokens,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		log:        log.WithComponent(logging.ComponentAuth),
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return AuthResult{}, err
	}

	// If the email is taken, fail fast; the unique index still guards the race.
	exists, err := s.accounts.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return AuthResult{}, apperr.Storage("check email", err)
	}
	if exists {
		s.log.WarnContext(ctx, "registration with existing email", logging.FieldOperation, logging.OpRegister, logging.FieldEmail, in.Email)
		return AuthResult{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now().UTC()
	account := Account{
		ID:           uuid.New(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, apperr.Storage("create account", err)
	}
	s.log.InfoContext(ctx, "account registered", logging.FieldOperation, logging.OpRegister, logging.FieldAccountID, account.ID)
	return s.issue(ctx, account)
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		s.hasher.VerifyDummy(password)
		s.log.WarnContext(ctx, "login failed", logging.FieldOperation, logging.OpLogin, logging.FieldEmail, email)
		return AuthResult{}, ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, apperr.Storage("get account", err)
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		s.log.WarnContext(ctx, "login failed", logging.FieldOperation, logging.OpLogin, logging.FieldEmail, email)
		return AuthResult{}, ErrInvalidCredentials
	}

	account.UpdatedAt = s.now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		return AuthResult{}, apperr.Storage("touch account", err)
	}
	return s.issue(ctx, account)
}

// Refresh consumes a refresh token and issues a new pair for the same account.
// A token works once; a replayed, expired or unknown token is rejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthResult{}, apperr.Invalid("refreshToken", "is required")
	}

	record, err := s.refresh.Consume(ctx, Digest(refreshToken))
	switch {
	case errors.Is(err, ErrRefreshTokenNotFound):
		return AuthResult{}, ErrInvalidRefreshToken
	case err != nil:
		return AuthResult{}, apperr.Storage("consume refresh token", err)
	}
	if !record.ExpiresAt.After(s.now()) {
		s.log.WarnContext(ctx, "expired refresh token", logging.FieldOperation, logging.OpRefresh, logging.FieldAccountID, record.AccountID)
		return AuthResult{}, ErrInvalidRefreshToken
	}

	account, err := s.accounts.GetByID(ctx, record.AccountID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return AuthResult{}, ErrInvalidRefreshToken
	case err != nil:
		return AuthResult{}, apperr.Storage("get account", err)
	}
	return s.issue(ctx, account)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return apperr.Invalid("refreshToken", "is required")
	}
	if err := s.refresh.Revoke(ctx, Digest(refreshToken)); err != nil {
		return apperr.Storage("revoke refresh token", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, account Account) (AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(account.ID, account.Email)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return AuthResult{}, err
	}
	now := s.now().UTC()
	record := RefreshToken{
		Digest:    Digest(refresh),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.refresh.Save(ctx, record); err != nil {
		return AuthResult{}, apperr.Storage("save refresh token", err)
	}
	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(accessTTL),
		Account:      account.Public(),
	}, nil
}
