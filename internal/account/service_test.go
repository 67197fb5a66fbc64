package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/tabular"
)

func newTestService(t *testing.T) (*Service, *tabular.Adapter) {
	t.Helper()
	tables := tabular.NewAdapter(zap.NewNop(), blob.NewMemoryStore())
	return NewService(zap.NewNop(), tables, false), tables
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "ab", "longenough")
	assert.True(t, errorx.IsValidation(err))

	_, err = s.Register(ctx, "ruby", "abc")
	assert.True(t, errorx.IsValidation(err))
}

func TestRegister_CollisionAcrossForms(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	acct, err := s.Register(ctx, "Ruby", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, "ruby", acct.Username)
	assert.Equal(t, cnst.RoleClient, acct.Role)
	assert.False(t, acct.Approved)

	// the same identity in another casing or with stray whitespace collides
	_, err = s.Register(ctx, "  RUBY ", "othersecret")
	assert.True(t, errorx.IsValidation(err))

	// the seed admin is present and also collides
	_, err = s.Register(ctx, "Prince", "whatever1")
	assert.True(t, errorx.IsValidation(err))
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "ruby", "secret1")
	assert.NoError(t, err)

	// unknown user, wrong password and unapproved account all fail the same way
	_, err = s.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, errorx.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "prince", "wrong")
	assert.ErrorIs(t, err, errorx.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "ruby", "secret1")
	assert.ErrorIs(t, err, errorx.ErrInvalidCredentials)
}

func TestAuthenticate_SeedAdmin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	acct, err := s.Authenticate(ctx, " Prince ", "1234")
	assert.NoError(t, err)
	assert.Equal(t, "prince", acct.Username)
	assert.True(t, acct.IsAdmin())
}

func TestAuthenticate_NumericPasswordArtifact(t *testing.T) {
	s, tables := newTestService(t)
	ctx := context.Background()

	// a numeric password round-tripped through a spreadsheet picks up ".0"
	tb := tabular.SeedAccounts()
	tb.Append(map[string]string{
		"USERNAME": "gem",
		"PASSWORD": "4321.0",
		"ROLE":     cnst.RoleSupplier,
		"APPROVED": cnst.Yes,
	})
	assert.NoError(t, tables.Save(ctx, cnst.AccountsKey, tb))

	acct, err := s.Authenticate(ctx, "gem", "4321")
	assert.NoError(t, err)
	assert.True(t, acct.IsSupplier())
}

func TestRegisterApproveLogin(t *testing.T) {
	s, tables := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "ruby", "secret1")
	assert.NoError(t, err)

	pending := s.Pending(ctx)
	assert.Len(t, pending, 1)
	assert.Equal(t, "ruby", pending[0].Username)

	// approval is a manual table edit
	tb := tables.LoadAccounts(ctx)
	for _, row := range tb.Rows {
		if row["USERNAME"] == "ruby" {
			row["APPROVED"] = cnst.Yes
		}
	}
	assert.NoError(t, tables.Save(ctx, cnst.AccountsKey, tb))

	acct, err := s.Authenticate(ctx, "ruby", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, cnst.RoleClient, acct.Role)
	assert.Empty(t, s.Pending(ctx))
}
