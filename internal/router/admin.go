package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/session"
	"github.com/facetlabs/facet/internal/textnorm"
)

func (r *Router) adminMenu(ctx context.Context, sess *session.Session, in gateway.Inbound) gateway.Reply {
	switch strings.TrimSpace(in.Text) {
	case gateway.BtnViewAllStock:
		return r.adminStockSummary(ctx)
	case gateway.BtnViewUsers:
		return r.adminUserStats(ctx)
	case gateway.BtnPendingAccounts:
		// Approval is a manual table edit; the chat surface does not act on
		// pending accounts.
		return gateway.Reply{Text: "✅ No pending accounts.", Keyboard: gateway.KeyboardAdmin}
	case gateway.BtnLeaderboard:
		return r.adminLeaderboard(ctx)
	case gateway.BtnViewDeals:
		return r.adminDeals(ctx, in.Handle)
	case gateway.BtnActivityReport:
		r.setState(in.Handle, stepActivityReport, nil)
		return gateway.Reply{Text: "📑 Enter: <username> <YYYY-MM-DD>", Keyboard: gateway.KeyboardAdmin}
	case gateway.BtnDeleteStock:
		r.setState(in.Handle, stepDeleteSupplier, nil)
		return gateway.Reply{Text: "🗑 Enter the supplier name to delete:", Keyboard: gateway.KeyboardAdmin}
	case gateway.BtnLogout:
		return r.cmdLogout(ctx, in.Handle)
	default:
		return gateway.Reply{Text: "Please use the menu buttons.", Keyboard: gateway.KeyboardAdmin}
	}
}

func (r *Router) adminStockSummary(ctx context.Context) gateway.Reply {
	sum := r.stocks.Summarize(ctx)
	if sum.Diamonds == 0 {
		return gateway.Reply{Text: "❌ No stock available.", Keyboard: gateway.KeyboardAdmin}
	}

	var b strings.Builder
	b.WriteString("📊 Stock Summary\n\n")
	fmt.Fprintf(&b, "💎 Total Diamonds: %d\n", sum.Diamonds)
	fmt.Fprintf(&b, "⚖️ Total Carats: %.2f\n", sum.Carats)
	fmt.Fprintf(&b, "💰 Estimated Value: $%.2f\n", sum.Value)
	fmt.Fprintf(&b, "👥 Suppliers: %d\n", sum.Suppliers)
	if len(sum.TopShapes) > 0 {
		b.WriteString("\nTop Shapes:\n")
		for _, sc := range sum.TopShapes {
			fmt.Fprintf(&b, "• %s: %d\n", sc.Shape, sc.Count)
		}
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardAdmin}
}

func (r *Router) adminUserStats(ctx context.Context) gateway.Reply {
	accounts := r.accounts.Accounts(ctx)
	if len(accounts) == 0 {
		return gateway.Reply{Text: "❌ No users found.", Keyboard: gateway.KeyboardAdmin}
	}

	roles := map[string]int{}
	approved := 0
	for _, a := range accounts {
		roles[textnorm.Normalize(a.Role)]++
		if a.Approved {
			approved++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 User Statistics\n\n👥 Total Users: %d\n\nBy Role:\n", len(accounts))
	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)
	for _, role := range names {
		fmt.Fprintf(&b, "• %s: %d\n", capitalize(role), roles[role])
	}
	fmt.Fprintf(&b, "\nBy Approval Status:\n• YES: %d\n• NO: %d\n", approved, len(accounts)-approved)
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardAdmin}
}

func (r *Router) adminLeaderboard(ctx context.Context) gateway.Reply {
	type standing struct {
		supplier string
		stones   int
		value    float64
	}
	byName := map[string]*standing{}
	for _, it := range r.stocks.Combined(ctx) {
		if it.Supplier == "" {
			continue
		}
		s, ok := byName[it.Supplier]
		if !ok {
			s = &standing{supplier: it.Supplier}
			byName[it.Supplier] = s
		}
		s.stones++
		s.value += it.Weight * it.PricePerCarat
	}
	if len(byName) == 0 {
		return gateway.Reply{Text: "❌ No supplier stock yet.", Keyboard: gateway.KeyboardAdmin}
	}

	standings := make([]*standing, 0, len(byName))
	for _, s := range byName {
		standings = append(standings, s)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].value != standings[j].value {
			return standings[i].value > standings[j].value
		}
		return standings[i].supplier < standings[j].supplier
	})

	var b strings.Builder
	b.WriteString("🏆 Supplier Leaderboard\n\n")
	for i, s := range standings {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %d stones, $%.0f\n", i+1, s.supplier, s.stones, s.value)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardAdmin}
}

func (r *Router) adminDeals(ctx context.Context, handle int64) gateway.Reply {
	deals := r.deals.All(ctx)
	if len(deals) == 0 {
		return gateway.Reply{Text: "🤝 No deals yet.", Keyboard: gateway.KeyboardAdmin}
	}

	var b strings.Builder
	b.WriteString("🤝 Deals\n\n")
	awaiting := 0
	for _, d := range deals {
		fmt.Fprintf(&b, "• %s stone %s %s→%s offer $%.2f [%s/%s/%s]\n",
			d.ID, d.StoneID, d.Client, d.Supplier, d.OfferPrice,
			d.SupplierAction, d.AdminAction, d.FinalStatus)
		if d.AwaitingAdmin() {
			awaiting++
		}
	}
	if awaiting > 0 {
		fmt.Fprintf(&b, "\n%d deal(s) await your approval.\nReply: <deal id> approve|reject", awaiting)
		r.setState(handle, stepAdminVerdict, nil)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardAdmin}
}
