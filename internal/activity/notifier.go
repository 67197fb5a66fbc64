package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/blob"
	"github.com/facetlabs/facet/internal/common/cnst"
)

// Notification is one inbox message.
type Notification struct {
	Message string `json:"message"`
	Time    string `json:"time"`
	Read    bool   `json:"read"`
}

// Notifier maintains per-identity inboxes at
// notifications/<role>_<username>.json.
type Notifier struct {
	logger *zap.Logger
	blobs  blob.Store
	tz     *time.Location
	now    func() time.Time
}

// NewNotifier creates a notification inbox writer.
func NewNotifier(logger *zap.Logger, blobs blob.Store, tz *time.Location) *Notifier {
	return &Notifier{
		logger: logger.Named("notify"),
		blobs:  blobs,
		tz:     tz,
		now:    time.Now,
	}
}

func inboxKey(role, username string) string {
	return cnst.NotificationsDir + role + "_" + username + ".json"
}

// Push appends an unread message to the identity's inbox. Best-effort.
func (n *Notifier) Push(ctx context.Context, role, username, message string) {
	key := inboxKey(role, username)
	inbox, err := n.read(ctx, key)
	if err != nil {
		n.logger.Error("failed to read inbox", zap.String("key", key), zap.Error(err))
	}

	inbox = append(inbox, Notification{
		Message: message,
		Time:    n.now().In(n.tz).Format("2006-01-02 15:04"),
		Read:    false,
	})
	n.write(ctx, key, inbox)
}

// Unread returns the identity's unread messages.
func (n *Notifier) Unread(ctx context.Context, role, username string) []Notification {
	inbox, err := n.read(ctx, inboxKey(role, username))
	if err != nil {
		return nil
	}
	var unread []Notification
	for _, msg := range inbox {
		if !msg.Read {
			unread = append(unread, msg)
		}
	}
	return unread
}

// MarkRead flags every message in the inbox as read.
func (n *Notifier) MarkRead(ctx context.Context, role, username string) {
	key := inboxKey(role, username)
	inbox, err := n.read(ctx, key)
	if err != nil || len(inbox) == 0 {
		return
	}
	for i := range inbox {
		inbox[i].Read = true
	}
	n.write(ctx, key, inbox)
}

func (n *Notifier) read(ctx context.Context, key string) ([]Notification, error) {
	data, err := n.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var inbox []Notification
	if err := json.Unmarshal(data, &inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

func (n *Notifier) write(ctx context.Context, key string, inbox []Notification) {
	data, err := json.MarshalIndent(inbox, "", "  ")
	if err != nil {
		n.logger.Error("failed to marshal inbox", zap.Error(err))
		return
	}
	if err := n.blobs.Put(ctx, key, data); err != nil {
		n.logger.Error("failed to write inbox", zap.String("key", key), zap.Error(err))
	}
}
