package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/cnst"
	"github.com/facetlabs/facet/internal/common/errorx"
	"github.com/facetlabs/facet/internal/gateway"
	"github.com/facetlabs/facet/internal/session"
)

// Conversation steps. A step names the input the router is waiting for.
const (
	stepCreateUsername  = "create_username"
	stepCreatePassword  = "create_password"
	stepLoginUsername   = "login_username"
	stepLoginPassword   = "login_password"
	stepDealStone       = "deal_stone"
	stepDealOffer       = "deal_offer"
	stepSearchCarat     = "search_carat"
	stepDeleteSupplier  = "delete_supplier"
	stepActivityReport  = "activity_report"
	stepUploadExcel     = "upload_excel"
	stepSupplierVerdict = "supplier_verdict"
	stepAdminVerdict    = "admin_verdict"
)

func (r *Router) continueFlow(ctx context.Context, sess *session.Session, st *flowState, in gateway.Inbound) gateway.Reply {
	text := strings.TrimSpace(in.Text)

	switch st.step {
	case stepCreateUsername:
		return r.flowCreateUsername(in.Handle, text)
	case stepCreatePassword:
		return r.flowCreatePassword(ctx, in.Handle, st, text)
	case stepLoginUsername:
		st.data["username"] = text
		r.setStateFrom(in.Handle, stepLoginPassword, st)
		return gateway.Reply{Text: "🔐 Enter password:", Keyboard: gateway.KeyboardNone}
	case stepLoginPassword:
		return r.flowLoginPassword(ctx, in.Handle, st, text)
	case stepDealStone:
		return r.flowDealStone(in.Handle, st, text)
	case stepDealOffer:
		return r.flowDealOffer(ctx, sess, in.Handle, st, text)
	case stepSearchCarat:
		return r.flowSearchCarat(ctx, sess, in.Handle, text)
	case stepDeleteSupplier:
		return r.flowDeleteSupplier(ctx, sess, in.Handle, text)
	case stepActivityReport:
		return r.flowActivityReport(ctx, sess, in.Handle, text)
	case stepUploadExcel:
		return r.flowUploadExcel(ctx, sess, in)
	case stepSupplierVerdict:
		return r.flowSupplierVerdict(ctx, sess, in.Handle, text)
	case stepAdminVerdict:
		return r.flowAdminVerdict(ctx, sess, in.Handle, text)
	default:
		r.clearState(in.Handle)
		return gateway.Reply{Text: "Please use the menu buttons.", Keyboard: keyboardFor(sess)}
	}
}

// setStateFrom keeps accumulated data while advancing the step.
func (r *Router) setStateFrom(handle int64, step string, st *flowState) {
	r.setState(handle, step, st.data)
}

func (r *Router) flowCreateUsername(handle int64, text string) gateway.Reply {
	if len(strings.TrimSpace(text)) < 3 {
		return gateway.Reply{Text: "❌ Username must be at least 3 characters.", Keyboard: gateway.KeyboardNone}
	}
	r.setState(handle, stepCreatePassword, map[string]string{"username": text})
	return gateway.Reply{Text: "🔐 Enter password (minimum 4 characters):", Keyboard: gateway.KeyboardNone}
}

func (r *Router) flowCreatePassword(ctx context.Context, handle int64, st *flowState, text string) gateway.Reply {
	if len(text) < 4 {
		return gateway.Reply{Text: "❌ Password must be at least 4 characters.", Keyboard: gateway.KeyboardNone}
	}
	_, err := r.accounts.Register(ctx, st.data["username"], text)
	r.clearState(handle)
	if err != nil {
		if errorx.IsValidation(err) {
			return gateway.Reply{Text: "❌ " + err.Error(), Keyboard: gateway.KeyboardNone}
		}
		r.logger.Error("registration failed", zap.Error(err))
		return gateway.Reply{Text: "❌ Something went wrong, please try again later.", Keyboard: gateway.KeyboardNone}
	}
	return gateway.Reply{
		Text: "✅ Account created successfully!\n\n" +
			"⏳ Your account is pending admin approval.\n" +
			"You'll be notified once approved.\n\n" +
			"Use /login after approval.",
		Keyboard: gateway.KeyboardNone,
	}
}

func (r *Router) flowLoginPassword(ctx context.Context, handle int64, st *flowState, text string) gateway.Reply {
	username := st.data["username"]
	r.clearState(handle)

	sess, err := r.sessions.Login(ctx, handle, username, text)
	if err != nil {
		return gateway.Reply{
			Text: "❌ Invalid login credentials\n\n" +
				"Possible reasons:\n" +
				"• Username/password incorrect\n" +
				"• Account not approved\n" +
				"• Account doesn't exist\n\n" +
				"Please check your credentials and try again.",
			Keyboard: gateway.KeyboardNone,
		}
	}

	unread := r.notify.Unread(ctx, sess.Role, sess.Username)
	banner := unreadBanner(unread)
	if banner != "" {
		r.notify.MarkRead(ctx, sess.Role, sess.Username)
	}
	return gateway.Reply{Text: roleWelcome(sess) + banner, Keyboard: keyboardFor(sess)}
}

func (r *Router) flowDealStone(handle int64, st *flowState, text string) gateway.Reply {
	if text == "" {
		return gateway.Reply{Text: "❌ Please enter a Stone ID.", Keyboard: gateway.KeyboardClient}
	}
	st.data["stone"] = text
	r.setStateFrom(handle, stepDealOffer, st)
	return gateway.Reply{Text: "💰 Enter your offer price (total, in USD):", Keyboard: gateway.KeyboardClient}
}

func (r *Router) flowDealOffer(ctx context.Context, sess *session.Session, handle int64, st *flowState, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil {
		return loginPrompt()
	}
	offer, err := strconv.ParseFloat(strings.TrimPrefix(text, "$"), 64)
	if err != nil {
		return gateway.Reply{Text: "❌ That doesn't look like a price.", Keyboard: gateway.KeyboardClient}
	}

	d, err := r.deals.Request(ctx, sess.Username, st.data["stone"], offer)
	if err != nil {
		if errorx.IsValidation(err) {
			return gateway.Reply{Text: "❌ " + err.Error(), Keyboard: gateway.KeyboardClient}
		}
		r.logger.Error("deal request failed", zap.Error(err))
		return gateway.Reply{Text: "❌ Could not create the deal, please try again later.", Keyboard: gateway.KeyboardClient}
	}
	r.journal.Log(ctx, sess, cnst.ActionDealRequest, map[string]string{
		"deal_id": d.ID, "stone_id": d.StoneID,
	})
	return gateway.Reply{
		Text: fmt.Sprintf("🤝 Deal %s requested for stone %s.\n"+
			"Supplier %s has been notified; you'll hear back once they respond.",
			d.ID, d.StoneID, d.Supplier),
		Keyboard: gateway.KeyboardClient,
	}
}

func (r *Router) flowSearchCarat(ctx context.Context, sess *session.Session, handle int64, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil {
		return loginPrompt()
	}
	carat, err := strconv.ParseFloat(text, 64)
	if err != nil || carat <= 0 {
		return gateway.Reply{Text: "❌ Please enter a carat weight like 1.20.", Keyboard: gateway.KeyboardClient}
	}

	// A quarter-carat band around the requested weight.
	items := r.stocks.SearchByCarat(ctx, carat-0.25, carat+0.25)
	if len(items) == 0 {
		return gateway.Reply{Text: "❌ No diamonds found near that weight.", Keyboard: gateway.KeyboardClient}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💎 %d diamond(s) near %.2f ct:\n\n", len(items), carat)
	for i, it := range items {
		if i == 10 {
			fmt.Fprintf(&b, "…and %d more\n", len(items)-10)
			break
		}
		fmt.Fprintf(&b, "• %s — %s %.2fct, $%.0f/ct (%s)\n",
			it.StockID, it.Shape, it.Weight, it.PricePerCarat, it.Supplier)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardClient}
}

func (r *Router) flowDeleteSupplier(ctx context.Context, sess *session.Session, handle int64, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil || !sess.IsAdmin() {
		return loginPrompt()
	}
	if err := r.stocks.DeleteSupplierStock(ctx, text); err != nil {
		r.logger.Error("delete supplier stock failed", zap.Error(err))
		return gateway.Reply{Text: "❌ Could not delete that supplier's stock.", Keyboard: gateway.KeyboardAdmin}
	}
	r.journal.Log(ctx, sess, cnst.ActionStockDelete, map[string]string{"supplier": text})
	return gateway.Reply{Text: "🗑 Supplier stock deleted and combined stock rebuilt.", Keyboard: gateway.KeyboardAdmin}
}

func (r *Router) flowActivityReport(ctx context.Context, sess *session.Session, handle int64, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil || !sess.IsAdmin() {
		return loginPrompt()
	}
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return gateway.Reply{Text: "❌ Use the form: <username> <YYYY-MM-DD>", Keyboard: gateway.KeyboardAdmin}
	}
	entries, err := r.journal.Entries(ctx, fields[1], fields[0])
	if err != nil {
		r.logger.Error("activity report failed", zap.Error(err))
		return gateway.Reply{Text: "❌ Could not read the activity log.", Keyboard: gateway.KeyboardAdmin}
	}
	if len(entries) == 0 {
		return gateway.Reply{Text: "📑 No activity recorded for that user on that day.", Keyboard: gateway.KeyboardAdmin}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📑 Activity for %s on %s:\n\n", fields[0], fields[1])
	for _, e := range entries {
		fmt.Fprintf(&b, "• %s %s (%s)\n", e.Time, e.Action, e.Role)
	}
	return gateway.Reply{Text: b.String(), Keyboard: gateway.KeyboardAdmin}
}

func (r *Router) flowUploadExcel(ctx context.Context, sess *session.Session, in gateway.Inbound) gateway.Reply {
	if sess == nil || !sess.IsSupplier() {
		r.clearState(in.Handle)
		return loginPrompt()
	}
	if in.Document == nil {
		return gateway.Reply{Text: "📤 Please send an Excel (.xlsx) file with your stock.", Keyboard: gateway.KeyboardSupplier}
	}
	r.clearState(in.Handle)

	rows, err := r.stocks.Upload(ctx, sess.Username, in.Document)
	if err != nil {
		if errorx.IsValidation(err) {
			return gateway.Reply{Text: "❌ " + err.Error(), Keyboard: gateway.KeyboardSupplier}
		}
		r.logger.Error("stock upload failed", zap.Error(err))
		return gateway.Reply{Text: "❌ Upload failed, please try again later.", Keyboard: gateway.KeyboardSupplier}
	}
	r.journal.Log(ctx, sess, cnst.ActionStockUpload, map[string]string{
		"file": in.DocumentName, "rows": strconv.Itoa(rows),
	})
	return gateway.Reply{
		Text:     fmt.Sprintf("✅ Uploaded %d stones. Combined stock has been rebuilt.", rows),
		Keyboard: gateway.KeyboardSupplier,
	}
}

func (r *Router) flowSupplierVerdict(ctx context.Context, sess *session.Session, handle int64, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil || !sess.IsSupplier() {
		return loginPrompt()
	}
	dealID, accept, ok := parseVerdict(text, "accept", "reject")
	if !ok {
		return gateway.Reply{Text: "❌ Use the form: <deal id> accept|reject", Keyboard: gateway.KeyboardSupplier}
	}

	d, err := r.deals.SupplierRespond(ctx, sess.Username, dealID, accept)
	if err != nil {
		return verdictError(err, gateway.KeyboardSupplier)
	}
	r.journal.Log(ctx, sess, cnst.ActionDealSupplier, map[string]string{
		"deal_id": d.ID, "action": d.SupplierAction,
	})
	if accept {
		return gateway.Reply{Text: fmt.Sprintf("✅ Deal %s accepted; awaiting admin approval.", d.ID), Keyboard: gateway.KeyboardSupplier}
	}
	return gateway.Reply{Text: fmt.Sprintf("🚫 Deal %s rejected and closed.", d.ID), Keyboard: gateway.KeyboardSupplier}
}

func (r *Router) flowAdminVerdict(ctx context.Context, sess *session.Session, handle int64, text string) gateway.Reply {
	r.clearState(handle)
	if sess == nil || !sess.IsAdmin() {
		return loginPrompt()
	}
	dealID, approve, ok := parseVerdict(text, "approve", "reject")
	if !ok {
		return gateway.Reply{Text: "❌ Use the form: <deal id> approve|reject", Keyboard: gateway.KeyboardAdmin}
	}

	d, err := r.deals.AdminRespond(ctx, dealID, approve)
	if err != nil {
		return verdictError(err, gateway.KeyboardAdmin)
	}
	r.journal.Log(ctx, sess, cnst.ActionDealAdmin, map[string]string{
		"deal_id": d.ID, "action": d.AdminAction,
	})
	if approve {
		return gateway.Reply{Text: fmt.Sprintf("🎉 Deal %s approved and completed; stone locked.", d.ID), Keyboard: gateway.KeyboardAdmin}
	}
	return gateway.Reply{Text: fmt.Sprintf("🚫 Deal %s rejected and closed.", d.ID), Keyboard: gateway.KeyboardAdmin}
}

// parseVerdict splits "<deal id> <yes|no word>" into its parts.
func parseVerdict(text, yesWord, noWord string) (dealID string, yes bool, ok bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) != 2 {
		return "", false, false
	}
	switch fields[1] {
	case yesWord:
		return fields[0], true, true
	case noWord:
		return fields[0], false, true
	default:
		return "", false, false
	}
}

func verdictError(err error, kb gateway.KeyboardVariant) gateway.Reply {
	if errorx.IsValidation(err) {
		return gateway.Reply{Text: "❌ " + err.Error(), Keyboard: kb}
	}
	// Invalid transitions and store trouble surface the same generic failure.
	return gateway.Reply{Text: "❌ That deal cannot be updated.", Keyboard: kb}
}

func loginPrompt() gateway.Reply {
	return gateway.Reply{
		Text:     "🔒 Please login first using /login\nOr create an account using /createaccount",
		Keyboard: gateway.KeyboardNone,
	}
}
