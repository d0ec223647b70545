package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/internal/dto"
	"github.com/yizhaofeng1/ai-trader/pkg/httpclient"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"
)

// BrokerRepository forwards live orders to the broker open API. Requests
// carry the common parameter set plus an MD5 signature over the sorted
// parameters; the short timeout comes from config (5s by default) because a
// blocking order call holds up the user request.
type BrokerRepository interface {
	PlaceOrder(ctx context.Context, creds dto.BrokerCredentials, order dto.BrokerOrder) (*dto.BrokerOrderResult, error)
}

type brokerRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpClient httpclient.HTTPClient
}

func NewBrokerRepository(cfg *config.Config, log *logger.Logger) BrokerRepository {
	return &brokerRepository{
		cfg:        cfg,
		logger:     log,
		httpClient: httpclient.New(log, cfg.Broker.BaseURL, cfg.Broker.Timeout, ""),
	}
}

func (r *brokerRepository) PlaceOrder(ctx context.Context, creds dto.BrokerCredentials, order dto.BrokerOrder) (*dto.BrokerOrderResult, error) {
	tradeSide := "1"
	if strings.EqualFold(order.Direction, "SELL") {
		tradeSide = "2"
	}

	params := map[string]string{
		"app_id":          creds.AppID,
		"timestamp":       strconv.FormatInt(time.Now().UnixMilli(), 10),
		"version":         "1.0",
		"format":          "json",
		"customer_id":     creds.CustomerID,
		"stock_code":      order.Symbol,
		"price":           strconv.FormatFloat(order.Price, 'f', -1, 64),
		"amount":          strconv.Itoa(order.Quantity),
		"trade_direction": tradeSide,
		"market":          inferMarket(order.Symbol),
		"order_type":      "0", // limit order
	}
	params["sign"] = signParams(params, creds.AppSecret)

	var apiResp dto.BrokerAPIResponse
	resp, err := r.httpClient.Post(ctx, "/api/trade/order/place", params, nil, &apiResp)
	if err != nil {
		return nil, fmt.Errorf("broker request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Broker returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("broker returned status %d", resp.StatusCode)
	}

	if !isBrokerSuccess(apiResp.Code) {
		return nil, fmt.Errorf("broker rejected order: %s", apiResp.Msg)
	}

	result := &dto.BrokerOrderResult{}
	if apiResp.Data != nil {
		if raw, err := json.Marshal(apiResp.Data); err == nil {
			_ = json.Unmarshal(raw, result)
		}
	}
	return result, nil
}

// signParams computes the broker signature: secret, then each non-empty
// key/value pair in key order, then secret again, MD5, upper hex.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "sign" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(secret)
	for _, k := range keys {
		if params[k] == "" {
			continue
		}
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	sb.WriteString(secret)

	sum := md5.Sum([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// inferMarket maps mainland symbols to their exchange code.
func inferMarket(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "SH"
	}
	return "SZ"
}

func isBrokerSuccess(code string) bool {
	switch code {
	case "0", "000000", "success":
		return true
	}
	return false
}
