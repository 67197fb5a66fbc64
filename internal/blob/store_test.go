package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/config"
)

func TestMemoryStore_PutGetListDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// missing key
	_, err := s.Get(ctx, "users/accounts.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)

	// put then get
	assert.NoError(t, s.Put(ctx, "stock/suppliers/a.xlsx", []byte("one")))
	assert.NoError(t, s.Put(ctx, "stock/suppliers/b.xlsx", []byte("two")))
	assert.NoError(t, s.Put(ctx, "stock/combined/all.xlsx", []byte("all")))

	data, err := s.Get(ctx, "stock/suppliers/a.xlsx")
	assert.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	// list honors the prefix and is sorted
	keys, err := s.List(ctx, "stock/suppliers/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"stock/suppliers/a.xlsx", "stock/suppliers/b.xlsx"}, keys)

	// delete is idempotent
	assert.NoError(t, s.Delete(ctx, "stock/suppliers/a.xlsx"))
	assert.NoError(t, s.Delete(ctx, "stock/suppliers/a.xlsx"))
	_, err = s.Get(ctx, "stock/suppliers/a.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DefensiveCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := []byte("abc")
	assert.NoError(t, s.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	// mutating what Get returned must not corrupt the stored blob
	out[0] = 'z'
	again, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestDiskStore_PutGetListDelete(t *testing.T) {
	s, err := NewDiskStore(zap.NewNop(), t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "deals/deal_history.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)

	// nested keys create intermediate directories
	assert.NoError(t, s.Put(ctx, "activity_logs/2025-01-01/prince.json", []byte("[]")))
	assert.NoError(t, s.Put(ctx, "activity_logs/2025-01-01/ruby.json", []byte("[]")))
	assert.NoError(t, s.Put(ctx, "sessions/logged_in_users.json", []byte("{}")))

	data, err := s.Get(ctx, "activity_logs/2025-01-01/prince.json")
	assert.NoError(t, err)
	assert.Equal(t, []byte("[]"), data)

	keys, err := s.List(ctx, "activity_logs/")
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"activity_logs/2025-01-01/prince.json",
		"activity_logs/2025-01-01/ruby.json",
	}, keys)

	// overwrite replaces content
	assert.NoError(t, s.Put(ctx, "sessions/logged_in_users.json", []byte(`{"1":{}}`)))
	data, err = s.Get(ctx, "sessions/logged_in_users.json")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"1":{}}`), data)

	assert.NoError(t, s.Delete(ctx, "sessions/logged_in_users.json"))
	assert.NoError(t, s.Delete(ctx, "sessions/logged_in_users.json"))
	_, err = s.Get(ctx, "sessions/logged_in_users.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactory(t *testing.T) {
	lg := zap.NewNop()

	s, err := New(lg, &config.BlobConfig{Type: "memory"})
	assert.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(lg, &config.BlobConfig{Type: "disk", Disk: config.BlobDiskConf{BaseDir: t.TempDir()}})
	assert.NoError(t, err)
	assert.IsType(t, &DiskStore{}, s)

	_, err = New(lg, &config.BlobConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}
