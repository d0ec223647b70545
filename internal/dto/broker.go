package dto

// BrokerCredentials are the per-account keys for the real broker API.
type BrokerCredentials struct {
	AppID      string
	AppSecret  string
	CustomerID string
}

type BrokerOrder struct {
	Symbol    string
	Price     float64
	Quantity  int
	Direction string
}

type BrokerOrderResult struct {
	OrderID string `json:"order_id"`
}

type BrokerAPIResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}
