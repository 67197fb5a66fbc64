package router

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/session"
	"github.com/facetlabs/facet/internal/stock"
	"github.com/facetlabs/facet/internal/tabular"
)

func (r *Router) supplierMenu(ctx context.Context, sess *session.Session, in gateway.Inbound) gateway.Reply {
	// An attached workbook is an upload regardless of which button came first.
	if in.Document != nil {
		r.setState(in.Handle, stepUploadExcel, nil)
		return r.flowUploadExcel(ctx, sess, in)
	}

	switch strings.TrimSpace(in.Text) {
	case gateway.BtnUploadExcel:
		r.setState(in.Handle, stepUploadExcel, nil)
		return gateway.Reply{
			Text:     "📤 Upload Stock Excel File\n\nPlease send an Excel file with your diamond stock.",
			Keyboard: gateway.KeyboardSupplier,
		}
	case gateway.BtnMyStock:
		return r.supplierStock(ctx, sess)
	case gateway.BtnMyAnalytics:
		return r.supplierAnalytics(ctx, sess)
	case gateway.BtnViewDeals:
		return r.supplierDeals(ctx, sess, in.Handle)
	case gateway.BtnDownloadSample:
		return r.supplierSample()
	case gateway.BtnLogout:
		return r.cmdLogout(ctx, in.Handle)
	default:
		return gateway.Reply{Text: "Please use the menu buttons.", Keyboard: gateway.KeyboardSupplier}
	}
}

func (r *Router) supplierStock(ctx context.Context, sess *session.Session) gateway.Reply {
	items := r.stocks.SupplierStock(ctx, sess.Username)
	if len(items) == 0 {
		return gateway.Reply{Text: "📦 You have no stock yet. Use 📤 Upload Excel to add some.", Keyboard: gateway.KeyboardSupplier}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 Your stock (%d stones):\n\n", len(items))
	for i, it := range items {
		if i == 15 {
			fmt.Fprintf(&b, "…and %d more\n", len(items)-15)
			break
		}
		locked := ""
		if it.Locked {
			locked = " 🔒"
		}
		fmt.Fprintf(&b, "• %s — %s %.2fct, $%.0f/ct%s\n",
			it.StockID, it.Shape, it.Weight, it.PricePerCarat, locked)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardSupplier}
}

func (r *Router) supplierAnalytics(ctx context.Context, sess *session.Session) gateway.Reply {
	items := r.stocks.SupplierStock(ctx, sess.Username)
	if len(items) == 0 {
		return gateway.Reply{Text: "📊 Nothing to analyze yet; upload stock first.", Keyboard: gateway.KeyboardSupplier}
	}

	var carats, value float64
	locked := 0
	for _, it := range items {
		carats += it.Weight
		value += it.Weight * it.PricePerCarat
		if it.Locked {
			locked++
		}
	}

	var b strings.Builder
	b.WriteString("📊 Your Analytics\n\n")
	fmt.Fprintf(&b, "💎 Stones: %d (%d locked)\n", len(items), locked)
	fmt.Fprintf(&b, "⚖️ Carats: %.2f\n", carats)
	fmt.Fprintf(&b, "💰 Stock value: $%.2f\n", value)
	if carats > 0 {
		fmt.Fprintf(&b, "📈 Average $/ct: %.0f\n", value/carats)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardSupplier}
}

func (r *Router) supplierDeals(ctx context.Context, sess *session.Session, handle int64) gateway.Reply {
	deals := r.deals.ForSupplier(ctx, sess.Username)
	if len(deals) == 0 {
		return gateway.Reply{Text: "🤝 No deals for your stock yet.", Keyboard: gateway.KeyboardSupplier}
	}

	var b strings.Builder
	b.WriteString("🤝 Your Deals\n\n")
	awaiting := 0
	for _, d := range deals {
		fmt.Fprintf(&b, "• %s stone %s from %s, offer $%.2f [%s/%s/%s]\n",
			d.ID, d.StoneID, d.Client, d.OfferPrice,
			d.SupplierAction, d.AdminAction, d.FinalStatus)
		if d.AwaitingSupplier() {
			awaiting++
		}
	}
	if awaiting > 0 {
		fmt.Fprintf(&b, "\n%d deal(s) await your response.\nReply: <deal id> accept|reject", awaiting)
		r.setState(handle, stepSupplierVerdict, nil)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardSupplier}
}

// supplierSample renders the downloadable upload template.
func (r *Router) supplierSample() gateway.Reply {
	t := tabular.NewTable(append(append([]string{}, stock.UploadColumns...), "Cut", "Polish", "Symmetry")...)
	t.Append(map[string]string{
		"Stock #": "DIA001", "Shape": "Round", "Weight": "1.20", "Color": "D",
		"Clarity": "IF", "Price Per Carat": "12000", "Lab": "GIA",
		"Report #": "1234567890", "Diamond Type": "Natural",
		"Description": "Eye clean round", "Cut": "EX", "Polish": "EX", "Symmetry": "EX",
	})
	t.Append(map[string]string{
		"Stock #": "DIA002", "Shape": "Princess", "Weight": "0.90", "Color": "F",
		"Clarity": "VVS1", "Price Per Carat": "9500", "Lab": "IGI",
		"Report #": "2345678901", "Diamond Type": "Natural",
		"Description": "Excellent princess", "Cut": "VG",
	})

	data, err := tabular.Encode(t)
	if err != nil {
		r.logger.Error("failed to build sample workbook", zap.Error(err))
		return gateway.Reply{Text: "❌ Could not build the sample file.", Keyboard: gateway.KeyboardSupplier}
	}
	return gateway.Reply{
		Text:     "📥 Sample stock template. Fill it in and send it back via 📤 Upload Excel.",
		Keyboard: gateway.KeyboardSupplier,
		File:     data,
		FileName: "sample_stock.xlsx",
	}
}
