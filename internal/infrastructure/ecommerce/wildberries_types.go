package ecommerce

import "encoding/json"

// ---------------------------------------------------------------------------
// Wildberries marketplace API types
// ---------------------------------------------------------------------------

// WildberriesStock is one sku/amount pair
type WildberriesStock struct {
	Sku    string `json:"sku"`
	Amount int    `json:"amount"`
}

// WildberriesStocksRequest is the body of PUT /api/v3/stocks/{warehouseId}
type WildberriesStocksRequest struct {
	Stocks []WildberriesStock `json:"stocks"`
}

// WildberriesStocksQuery is the body of POST /api/v3/stocks/{warehouseId}
type WildberriesStocksQuery struct {
	Skus []string `json:"skus"`
}

// WildberriesStocksResponse is the response of POST /api/v3/stocks/{warehouseId}
type WildberriesStocksResponse struct {
	Stocks []WildberriesStock `json:"stocks"`
}

// WildberriesWarehouse is a seller warehouse
type WildberriesWarehouse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OfficeID     int64  `json:"officeId"`
	CargoType    int    `json:"cargoType"`
	DeliveryType int    `json:"deliveryType"`
}

// WildberriesError is the error envelope returned by the marketplace API
type WildberriesError struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Data    []WildberriesStock `json:"data,omitempty"`
}

// parseWildberriesError extracts code and message from either a single error
// object or an array of them. Unknown bodies yield empty strings.
func parseWildberriesError(body []byte) (code, message string) {
	var single WildberriesError
	if err := json.Unmarshal(body, &single); err == nil && (single.Code != "" || single.Message != "") {
		return single.Code, single.Message
	}
	var list []WildberriesError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].Code, list[0].Message
	}
	return "", ""
}
