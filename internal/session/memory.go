package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
)

// MemoryStore implements Store in memory, with the session set snapshotted
// to the blob store on every mutation. A snapshot failure is logged and
// swallowed; the in-memory set stays authoritative for this process, so a
// crash loses at most the latest mutation.
type MemoryStore struct {
	logger *zap.Logger
	blobs  blob.Store
	mu     sync.RWMutex
	byID   map[int64]*Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a snapshot-backed in-memory session store.
func NewMemoryStore(logger *zap.Logger, blobs blob.Store) *MemoryStore {
	return &MemoryStore{
		logger: logger.Named("session.store.memory"),
		blobs:  blobs,
		byID:   make(map[int64]*Session),
	}
}

// Put implements Store.Put
func (s *MemoryStore) Put(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	cp := *sess
	s.byID[sess.Handle] = &cp
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Get implements Store.Get
func (s *MemoryStore) Get(_ context.Context, handle int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[handle]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// Delete implements Store.Delete
func (s *MemoryStore) Delete(ctx context.Context, handle int64) error {
	s.mu.Lock()
	_, ok := s.byID[handle]
	delete(s.byID, handle)
	s.mu.Unlock()

	if ok {
		s.persist(ctx)
	}
	return nil
}

// List implements Store.List
func (s *MemoryStore) List(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.byID))
	for _, sess := range s.byID {
		cp := *sess
		out = append(out, &cp)
	}
	return out, nil
}

// Load implements Store.Load
func (s *MemoryStore) Load(ctx context.Context) error {
	data, err := s.blobs.Get(ctx, cnst.SessionKey)
	if err != nil {
		if err == blob.ErrNotFound {
			return nil
		}
		return err
	}

	var raw map[string]*Session
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[int64]*Session, len(raw))
	for k, sess := range raw {
		handle, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			s.logger.Warn("skipping snapshot entry with bad handle", zap.String("key", k))
			continue
		}
		sess.Handle = handle
		s.byID[handle] = sess
	}
	s.logger.Info("loaded session snapshot", zap.Int("sessions", len(s.byID)))
	return nil
}

func (s *MemoryStore) persist(ctx context.Context) {
	s.mu.RLock()
	snapshot := make(map[string]*Session, len(s.byID))
	for handle, sess := range s.byID {
		snapshot[strconv.FormatInt(handle, 10)] = sess
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("failed to marshal session snapshot", zap.Error(err))
		return
	}
	if err := s.blobs.Put(ctx, cnst.SessionKey, data); err != nil {
		s.logger.Error("failed to save session snapshot", zap.Error(err))
		return
	}
	s.logger.Debug("saved session snapshot", zap.Int("sessions", len(snapshot)))
}
