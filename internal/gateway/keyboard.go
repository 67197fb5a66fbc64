package gateway

// Menu button labels. These free-text labels arrive back as ordinary
// messages, so the router matches on them verbatim.
const (
	BtnViewAllStock    = "💎 View All Stock"
	BtnViewUsers       = "👥 View Users"
	BtnPendingAccounts = "⏳ Pending Accounts"
	BtnLeaderboard     = "🏆 Supplier Leaderboard"
	BtnViewDeals       = "🤝 View Deals"
	BtnActivityReport  = "📑 User Activity Report"
	BtnDeleteStock     = "🗑 Delete Supplier Stock"
	BtnLogout          = "🚪 Logout"

	BtnSearchDiamonds = "💎 Search Diamonds"
	BtnSmartDeals     = "🔥 Smart Deals"
	BtnRequestDeal    = "🤝 Request Deal"

	BtnUploadExcel    = "📤 Upload Excel"
	BtnMyStock        = "📦 My Stock"
	BtnMyAnalytics    = "📊 My Analytics"
	BtnDownloadSample = "📥 Download Sample Excel"
)

// MenuRows returns the button rows for a keyboard variant.
func MenuRows(v KeyboardVariant) [][]string {
	switch v {
	case KeyboardAdmin:
		return [][]string{
			{BtnViewAllStock},
			{BtnViewUsers},
			{BtnPendingAccounts},
			{BtnLeaderboard},
			{BtnViewDeals},
			{BtnActivityReport},
			{BtnDeleteStock},
			{BtnLogout},
		}
	case KeyboardSupplier:
		return [][]string{
			{BtnUploadExcel},
			{BtnMyStock},
			{BtnMyAnalytics},
			{BtnViewDeals},
			{BtnDownloadSample},
			{BtnLogout},
		}
	case KeyboardClient:
		return [][]string{
			{BtnSearchDiamonds},
			{BtnSmartDeals},
			{BtnRequestDeal},
			{BtnLogout},
		}
	default:
		return nil
	}
}
