package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finance/pkg/apperr"
	"github.com/artem13815/finance/pkg/logging"
)

// ProfileUseCase manages an authenticated account's own profile.
type ProfileUseCase interface {
	Get(ctx context.Context, accountID uuid.UUID) (Account, error)
	Update(ctx context.Context, accountID uuid.UUID, in ProfileInput) (Account, error)
	Delete(ctx context.Context, accountID uuid.UUID) error
}

type profileService struct {
	accounts AccountRepository
	refresh  RefreshTokenStore
	log      *logging.Logger
	now      func() time.Time
}

func NewProfileService(accounts AccountRepository, refresh RefreshTokenStore, log *logging.Logger) ProfileUseCase {
	if log == nil {
		log = logging.Nop()
	}
	return &profileService{
		accounts: accounts,
		refresh:  refresh,
		log:      log.WithComponent(logging.ComponentProfile),
		now:      time.Now,
	}
}

func (s *profileService) Get(ctx context.Context, accountID uuid.UUID) (Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return Account{}, apperr.Storage("get account", err)
	}
	return account.Public(), nil
}

func (s *profileService) Update(ctx context.Context, accountID uuid.UUID, in ProfileInput) (Account, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return Account{}, apperr.Storage("get account", err)
	}
	account.FirstName = in.FirstName
	account.LastName = in.LastName
	account.Bio = in.Bio
	account.UpdatedAt = s.now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		return Account{}, apperr.Storage("update account", err)
	}
	s.log.InfoContext(ctx, "account updated", logging.FieldOperation, logging.OpUpdate, logging.FieldAccountID, accountID)
	return account.Public(), nil
}

// Delete removes the account together with its ledger entries and refresh tokens.
func (s *profileService) Delete(ctx context.Context, accountID uuid.UUID) error {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return apperr.Storage("delete account", err)
	}
	// Leftover tokens are harmless: refresh rejects tokens of missing accounts.
	if err := s.refresh.RevokeAll(ctx, accountID); err != nil {
		s.log.ErrorContext(ctx, "revoke refresh tokens", logging.FieldAccountID, accountID, logging.FieldError, err)
	}
	s.log.InfoContext(ctx, "account deleted", logging.FieldOperation, logging.OpDelete, logging.FieldAccountID, accountID)
	return nil
}
