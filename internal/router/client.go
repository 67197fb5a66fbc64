package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/session"
)

func (r *Router) clientMenu(ctx context.Context, sess *session.Session, in gateway.Inbound) gateway.Reply {
	switch strings.TrimSpace(in.Text) {
	case gateway.BtnSearchDiamonds:
		r.setState(in.Handle, stepSearchCarat, nil)
		return gateway.Reply{
			Text:     "💎 Diamond Search\n\nEnter the carat weight you're looking for:",
			Keyboard: gateway.KeyboardClient,
		}
	case gateway.BtnSmartDeals:
		return r.clientSmartDeals(ctx)
	case gateway.BtnRequestDeal:
		r.setState(in.Handle, stepDealStone, nil)
		return gateway.Reply{
			Text:     "🤝 Request Deal\n\nEnter the Stone ID:",
			Keyboard: gateway.KeyboardClient,
		}
	case gateway.BtnLogout:
		return r.cmdLogout(ctx, in.Handle)
	default:
		return gateway.Reply{Text: "Please use the menu buttons.", Keyboard: gateway.KeyboardClient}
	}
}

func (r *Router) clientSmartDeals(ctx context.Context) gateway.Reply {
	items := r.stocks.SmartDeals(ctx, 5)
	if len(items) == 0 {
		return gateway.Reply{Text: "🔥 No deals available right now; check back later.", Keyboard: gateway.KeyboardClient}
	}

	var b strings.Builder
	b.WriteString("🔥 Smart Deals — best $/ct right now:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "• %s — %s %.2fct at $%.0f/ct (%s)\n",
			it.StockID, it.Shape, it.Weight, it.PricePerCarat, it.Supplier)
	}
	b.WriteString("\nUse 🤝 Request Deal with a Stone ID to make an offer.")
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardClient}
}
