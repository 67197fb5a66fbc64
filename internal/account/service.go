package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/tabular"
	"github.com/facetlabs/facet/internal/textnorm"
)

const (
	minUsernameLen = 3
	minPasswordLen = 4
)

// Service runs the account workflow over the tabular store.
type Service struct {
	logger   *zap.Logger
	tables   *tabular.Adapter
	readOnly bool
}

// NewService creates the account service. With readOnly set, registration
// still validates but never writes the table back.
func NewService(logger *zap.Logger, tables *tabular.Adapter, readOnly bool) *Service {
	return &Service{
		logger:   logger.Named("account"),
		tables:   tables,
		readOnly: readOnly,
	}
}

// Register appends a new pending client account. The whole account table is
// re-read immediately before the write; two concurrent registrations can
// still race and the last writer wins.
func (s *Service) Register(ctx context.Context, username, password string) (*Account, error) {
	username = textnorm.Normalize(username)
	if len(username) < minUsernameLen {
		return nil, errorx.Validationf("username must be at least %d characters", minUsernameLen)
	}
	password = textnorm.Clean(password)
	if len(password) < minPasswordLen {
		return nil, errorx.Validationf("password must be at least %d characters", minPasswordLen)
	}

	t := s.tables.LoadAccounts(ctx)
	for _, row := range t.Rows {
		if textnorm.Normalize(row["USERNAME"]) == username {
			return nil, errorx.Validationf("username already exists")
		}
	}

	acct := &Account{
		Username: username,
		Password: textnorm.CleanPassword(password),
		Role:     cnst.RoleClient,
		Approved: false,
	}
	t.Append(toRow(acct))

	if s.readOnly {
		s.logger.Warn("account table is read only, skipping save")
		return acct, nil
	}
	if err := s.tables.Save(ctx, cnst.AccountsKey, t); err != nil {
		// Persistence failure degrades, it does not fail the registration at
		// this reliability tier; the row is simply lost.
		s.logger.Error("failed to save accounts", zap.Error(err))
	}
	s.logger.Info("registered account", zap.String("username", username))
	return acct, nil
}

// Authenticate verifies credentials against the account table. Any failure
// (unknown user, wrong password, not approved) yields the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	wantUser := textnorm.Normalize(username)
	wantPass := textnorm.CleanPassword(password)

	t := s.tables.LoadAccounts(ctx)
	for _, row := range t.Rows {
		if textnorm.Normalize(row["USERNAME"]) != wantUser {
			continue
		}
		if textnorm.CleanPassword(row["PASSWORD"]) != wantPass {
			continue
		}
		if textnorm.Normalize(row["APPROVED"]) != "yes" {
			continue
		}
		return fromRow(row), nil
	}
	return nil, errorx.ErrInvalidCredentials
}

// Accounts returns every account record, for admin reporting.
func (s *Service) Accounts(ctx context.Context) []*Account {
	t := s.tables.LoadAccounts(ctx)
	out := make([]*Account, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, fromRow(row))
	}
	return out
}

// Pending returns accounts awaiting approval. The admin chat surface does
// not act on these; approval stays a manual table edit.
func (s *Service) Pending(ctx context.Context) []*Account {
	var out []*Account
	for _, a := range s.Accounts(ctx) {
		if !a.Approved {
			out = append(out, a)
		}
	}
	return out
}
