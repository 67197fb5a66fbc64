package cnst

// Activity journal action names.
const (
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionSessionExpired = "SESSION_EXPIRED"
	ActionRegister       = "REGISTER"
	ActionStockUpload    = "STOCK_UPLOAD"
	ActionStockDelete    = "STOCK_DELETE"
	ActionDealRequest    = "DEAL_REQUEST"
	ActionDealSupplier   = "DEAL_SUPPLIER_RESPONSE"
	ActionDealAdmin      = "DEAL_ADMIN_RESPONSE"
)
