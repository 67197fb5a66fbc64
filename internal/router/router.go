// Package router dispatches inbound chat events: rate-limit gate, session
// lookup, then slash commands, in-flight conversation steps and role menus,
// in that order. Role-specific behavior is resolved once per message from
// the live session, never re-checked per branch.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/account"
	"github.com/facetlabs/facet/internal/activity"
	"github.com/facetlabs/facet/internal/deal"
	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/ratelimit"
	"github.com/facetlabs/facet/internal/session"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/pkg/metrics"
)

// Router wires the gate chain together. All state it owns is the per-handle
// conversation step map; everything durable lives behind the services.
type Router struct {
	logger   *zap.Logger
	limiter  *ratelimit.Limiter
	sessions *session.Manager
	accounts *account.Service
	stocks   *stock.Service
	deals    *deal.Service
	journal  *activity.Logger
	notify   *activity.Notifier
	metrics  *metrics.Metrics

	mu     sync.Mutex
	states map[int64]*flowState
}

// flowState is one identity's position in a multi-step conversation.
type flowState struct {
	step    string
	data    map[string]string
	updated time.Time
}

// New creates the command router.
func New(
	logger *zap.Logger,
	limiter *ratelimit.Limiter,
	sessions *session.Manager,
	accounts *account.Service,
	stocks *stock.Service,
	deals *deal.Service,
	journal *activity.Logger,
	notify *activity.Notifier,
	m *metrics.Metrics,
) *Router {
	return &Router{
		logger:   logger.Named("router"),
		limiter:  limiter,
		sessions: sessions,
		accounts: accounts,
		stocks:   stocks,
		deals:    deals,
		journal:  journal,
		notify:   notify,
		metrics:  m,
		states:   make(map[int64]*flowState),
	}
}

var _ gateway.Handler = (*Router)(nil)

// Handle implements gateway.Handler.
func (r *Router) Handle(ctx context.Context, in gateway.Inbound) gateway.Reply {
	start := time.Now()

	if !r.limiter.Allow(in.Handle) {
		r.metrics.ObserveRateLimited()
		return gateway.Reply{Text: "⏳ Too many messages. Please slow down.", Keyboard: gateway.KeyboardNone}
	}

	sess := r.sessions.Get(ctx, in.Handle)
	reply := r.route(ctx, sess, in)

	role := "anonymous"
	if sess != nil {
		role = sess.Role
	}
	r.metrics.ObserveCommand(role, "ok", time.Since(start))
	r.metrics.SetActiveSessions(r.sessions.Count(ctx))
	return reply
}

func (r *Router) route(ctx context.Context, sess *session.Session, in gateway.Inbound) gateway.Reply {
	text := strings.TrimSpace(in.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		return r.cmdStart()
	case strings.HasPrefix(text, "/help"):
		return r.cmdHelp()
	case strings.HasPrefix(text, "/createaccount"):
		return r.cmdCreateAccount(in.Handle)
	case strings.HasPrefix(text, "/login"):
		return r.cmdLogin(ctx, sess, in.Handle)
	case strings.HasPrefix(text, "/logout"):
		return r.cmdLogout(ctx, in.Handle)
	}

	if st := r.state(in.Handle); st != nil {
		return r.continueFlow(ctx, sess, st, in)
	}

	if sess == nil {
		return gateway.Reply{
			Text:     "🔒 Please login first using /login\nOr create an account using /createaccount",
			Keyboard: gateway.KeyboardNone,
		}
	}

	switch {
	case sess.IsAdmin():
		return r.adminMenu(ctx, sess, in)
	case sess.IsSupplier():
		return r.supplierMenu(ctx, sess, in)
	default:
		return r.clientMenu(ctx, sess, in)
	}
}

func (r *Router) cmdStart() gateway.Reply {
	return gateway.Reply{
		Text: "💎 Welcome to the Diamond Trading Desk!\n\n" +
			"Use /login to sign in\n" +
			"Use /createaccount to register\n" +
			"Use /help for assistance",
		Keyboard: gateway.KeyboardNone,
	}
}

func (r *Router) cmdHelp() gateway.Reply {
	return gateway.Reply{
		Text: "🤖 Diamond Trading Desk Help\n\n" +
			"Commands:\n" +
			"• /start - Start the bot\n" +
			"• /login - Login to your account\n" +
			"• /createaccount - Register new account\n" +
			"• /logout - Logout from current session\n\n" +
			"Roles:\n" +
			"• 👑 Admin - Manage users, view all stock, approve deals\n" +
			"• 💎 Supplier - Upload stock, view deals, analytics\n" +
			"• 🥂 Client - Search diamonds, request deals, smart deals\n\n" +
			"Need help? Contact the system administrator.",
		Keyboard: gateway.KeyboardNone,
	}
}

func (r *Router) cmdCreateAccount(handle int64) gateway.Reply {
	r.setState(handle, stepCreateUsername, nil)
	return gateway.Reply{
		Text:     "📝 Account Creation\n\nEnter your desired username (minimum 3 characters):",
		Keyboard: gateway.KeyboardNone,
	}
}

func (r *Router) cmdLogin(ctx context.Context, sess *session.Session, handle int64) gateway.Reply {
	if sess != nil {
		return gateway.Reply{
			Text:     fmt.Sprintf("ℹ️ You're already logged in as %s.\nUse /logout to sign out first.", sess.Username),
			Keyboard: keyboardFor(sess),
		}
	}
	r.setState(handle, stepLoginUsername, nil)
	return gateway.Reply{Text: "👤 Enter your username:", Keyboard: gateway.KeyboardNone}
}

func (r *Router) cmdLogout(ctx context.Context, handle int64) gateway.Reply {
	r.clearState(handle)
	if sess := r.sessions.Logout(ctx, handle); sess == nil {
		return gateway.Reply{Text: "ℹ️ You are not logged in.", Keyboard: gateway.KeyboardNone}
	}
	return gateway.Reply{
		Text:     "✅ Successfully logged out.\nUse /login to sign in again.",
		Keyboard: gateway.KeyboardNone,
	}
}

// keyboardFor maps a session's role to its reply keyboard.
func keyboardFor(sess *session.Session) gateway.KeyboardVariant {
	switch {
	case sess == nil:
		return gateway.KeyboardNone
	case sess.IsAdmin():
		return gateway.KeyboardAdmin
	case sess.IsSupplier():
		return gateway.KeyboardSupplier
	default:
		return gateway.KeyboardClient
	}
}

func (r *Router) state(handle int64) *flowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[handle]
}

func (r *Router) setState(handle int64, step string, data map[string]string) {
	if data == nil {
		data = make(map[string]string)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[handle] = &flowState{step: step, data: data, updated: time.Now()}
}

func (r *Router) clearState(handle int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, handle)
}

func unreadBanner(notes []activity.Notification) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n\n🔔 You have %d unread notification(s):\n", len(notes)))
	for _, n := range notes {
		b.WriteString("• " + n.Message + "\n")
	}
	return b.String()
}

func roleWelcome(sess *session.Session) string {
	name := capitalize(sess.Username)
	switch {
	case sess.IsAdmin():
		return "👑 Welcome Admin " + name
	case sess.IsSupplier():
		return "💎 Welcome Supplier " + name
	default:
		return "🥂 Welcome " + name
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
