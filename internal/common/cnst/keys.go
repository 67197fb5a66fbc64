package cnst

// Blob key layout. All tables live at fixed logical paths; per-supplier and
// per-identity blobs hang off the prefixes below.
const (
	AccountsKey      = "users/accounts.xlsx"
	SupplierStockDir = "stock/suppliers/"
	CombinedStockKey = "stock/combined/all_suppliers_stock.xlsx"
	DealHistoryKey   = "deals/deal_history.xlsx"
	SessionKey       = "sessions/logged_in_users.json"
	ActivityLogDir   = "activity_logs/"
	NotificationsDir = "notifications/"

	SampleTemplateKey = "stock/suppliers/SAMPLE_TEMPLATE.xlsx"
)
