package ecommerce

// ---------------------------------------------------------------------------
// Ozon Seller API types
// ---------------------------------------------------------------------------

// OzonStock is one line of POST /v2/products/stocks
type OzonStock struct {
	OfferID     string `json:"offer_id"`
	Stock       int    `json:"stock"`
	WarehouseID int64  `json:"warehouse_id"`
}

// OzonStocksRequest is the body of POST /v2/products/stocks
type OzonStocksRequest struct {
	Stocks []OzonStock `json:"stocks"`
}

// OzonItemError is a per-item error in a stocks response
type OzonItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OzonStockResult is the per-item verdict in a stocks response
type OzonStockResult struct {
	OfferID     string          `json:"offer_id"`
	ProductID   int64           `json:"product_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Updated     bool            `json:"updated"`
	Errors      []OzonItemError `json:"errors"`
}

// OzonStocksResponse is the response of POST /v2/products/stocks
type OzonStocksResponse struct {
	Result []OzonStockResult `json:"result"`
}

// OzonErrorResponse is the error envelope for non-2xx answers
type OzonErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OzonStockInfoRequest is the body of POST /v3/product/info/stocks
type OzonStockInfoRequest struct {
	Filter OzonStockInfoFilter `json:"filter"`
	LastID string              `json:"last_id"`
	Limit  int                 `json:"limit"`
}

// OzonStockInfoFilter narrows the stock info query
type OzonStockInfoFilter struct {
	OfferID    []string `json:"offer_id"`
	Visibility string   `json:"visibility"`
}

// OzonStockInfoResponse is the response of POST /v3/product/info/stocks
type OzonStockInfoResponse struct {
	Result struct {
		Items  []OzonStockInfoItem `json:"items"`
		LastID string              `json:"last_id"`
		Total  int                 `json:"total"`
	} `json:"result"`
}

// OzonStockInfoItem holds stock by fulfilment type for one offer
type OzonStockInfoItem struct {
	OfferID   string `json:"offer_id"`
	ProductID int64  `json:"product_id"`
	Stocks    []struct {
		Type     string `json:"type"`
		Present  int    `json:"present"`
		Reserved int    `json:"reserved"`
	} `json:"stocks"`
}

// OzonWarehouseListResponse is the response of POST /v1/warehouse/list
type OzonWarehouseListResponse struct {
	Result []OzonWarehouse `json:"result"`
}

// OzonWarehouse is a seller warehouse
type OzonWarehouse struct {
	WarehouseID int64  `json:"warehouse_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
}
