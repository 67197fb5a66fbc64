// Package activity keeps the append-only per-identity event journal and the
// per-identity notification inbox. Both live as JSON array blobs; appends
// are read-append-write and best-effort.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/session"
)

// Entry is one journal record. Field names match the persisted layout.
type Entry struct {
	Date     string            `json:"date"`
	Time     string            `json:"time"`
	LoginID  string            `json:"login_id"`
	Role     string            `json:"role"`
	Action   string            `json:"action"`
	Details  map[string]string `json:"details"`
	Telegram int64             `json:"telegram_id"`
}

// Logger appends journal entries under activity_logs/<date>/<username>.json.
type Logger struct {
	logger *zap.Logger
	blobs  blob.Store
	tz     *time.Location
	now    func() time.Time
}

// NewLogger creates an activity journal writing timestamps in tz.
func NewLogger(logger *zap.Logger, blobs blob.Store, tz *time.Location) *Logger {
	return &Logger{
		logger: logger.Named("activity"),
		blobs:  blobs,
		tz:     tz,
		now:    time.Now,
	}
}

var _ session.Journal = (*Logger)(nil)

// Log appends an entry to the identity's journal for today. Failures are
// logged and swallowed; journaling never fails an operation.
func (l *Logger) Log(ctx context.Context, sess *session.Session, action string, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	now := l.now().In(l.tz)
	entry := Entry{
		Date:     now.Format("2006-01-02"),
		Time:     now.Format("15:04:05"),
		LoginID:  sess.Username,
		Role:     sess.Role,
		Action:   action,
		Details:  details,
		Telegram: sess.Handle,
	}

	key := cnst.ActivityLogDir + entry.Date + "/" + sess.Username + ".json"
	var entries []Entry
	if data, err := l.blobs.Get(ctx, key); err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			l.logger.Warn("journal blob unreadable, restarting it", zap.String("key", key), zap.Error(err))
			entries = nil
		}
	} else if !errors.Is(err, blob.ErrNotFound) {
		l.logger.Error("failed to read journal", zap.String("key", key), zap.Error(err))
	}

	entries = append(entries, entry)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		l.logger.Error("failed to marshal journal", zap.Error(err))
		return
	}
	if err := l.blobs.Put(ctx, key, data); err != nil {
		l.logger.Error("failed to write journal", zap.String("key", key), zap.Error(err))
		return
	}
	l.logger.Info("logged activity",
		zap.String("username", sess.Username),
		zap.String("action", action))
}

// Entries returns the journal for an identity on a given date, for the
// admin activity report.
func (l *Logger) Entries(ctx context.Context, date, username string) ([]Entry, error) {
	key := cnst.ActivityLogDir + date + "/" + username + ".json"
	data, err := l.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
