package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// BinanceConfig holds configuration for the Binance REST client.
type BinanceConfig struct {
	BaseURL    string
	QuoteAsset string // appended to symbols to form a pair, e.g. BTC
	Timeout    time.Duration
}

// DefaultBinanceConfig returns the default Binance configuration.
func DefaultBinanceConfig() BinanceConfig {
	return BinanceConfig{
		BaseURL:    "https://api.binance.com",
		QuoteAsset: "BTC",
		Timeout:    10 * time.Second,
	}
}

// BinanceClient implements Client against the Binance public REST API.
// Only public market-data endpoints are used, so no API key is
// required. The client holds no mutable session state and is safe for
// concurrent use.
type BinanceClient struct {
	baseURL    string
	quoteAsset string
	httpClient *http.Client
}

// NewBinanceClient creates a new Binance market-data client.
func NewBinanceClient(cfg BinanceConfig) *BinanceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.binance.com"
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = "BTC"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &BinanceClient{
		baseURL:    cfg.BaseURL,
		quoteAsset: cfg.QuoteAsset,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Pair returns the exchange pair for a base symbol, e.g. "NANO" ->
// "NANOBTC".
func (c *BinanceClient) Pair(symbol string) string {
	return strings.ToUpper(symbol) + c.quoteAsset
}

func (c *BinanceClient) call(ctx context.Context, path string, params url.Values, out interface{}) error {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("binance api error (status %d): %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}

type tradeResponse struct {
	Price    string `json:"price"`
	Qty      string `json:"qty"`
	QuoteQty string `json:"quoteQty"`
	Time     int64  `json:"time"`
}

// FetchTrades returns the most recent trades for a symbol, oldest
// first. Binance bounds the page server-side.
func (c *BinanceClient) FetchTrades(ctx context.Context, symbol string) ([]models.Trade, error) {
	params := url.Values{}
	params.Set("symbol", c.Pair(symbol))

	var raw []tradeResponse
	if err := c.call(ctx, "/api/v3/trades", params, &raw); err != nil {
		return nil, apperrors.NewMarketError("fetch_trades", symbol, err)
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, t := range raw {
		price, _ := strconv.ParseFloat(t.Price, 64)
		amount, _ := strconv.ParseFloat(t.Qty, 64)
		cost, _ := strconv.ParseFloat(t.QuoteQty, 64)
		trades = append(trades, models.Trade{
			Timestamp: time.UnixMilli(t.Time).UTC(),
			Price:     price,
			Amount:    amount,
			Cost:      cost,
		})
	}
	return trades, nil
}

type depthResponse struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// FetchOrderBook returns a depth snapshot for a symbol.
func (c *BinanceClient) FetchOrderBook(ctx context.Context, symbol string) (models.OrderBook, error) {
	params := url.Values{}
	params.Set("symbol", c.Pair(symbol))
	params.Set("limit", "100")

	var raw depthResponse
	if err := c.call(ctx, "/api/v3/depth", params, &raw); err != nil {
		return models.OrderBook{}, apperrors.NewMarketError("fetch_order_book", symbol, err)
	}

	book := models.OrderBook{
		Symbol:    symbol,
		Bids:      parseLevels(raw.Bids),
		Asks:      parseLevels(raw.Asks),
		Timestamp: time.Now().UTC(),
	}
	return book, nil
}

func parseLevels(levels [][2]string) [][2]float64 {
	out := make([][2]float64, 0, len(levels))
	for _, level := range levels {
		price, _ := strconv.ParseFloat(level[0], 64)
		qty, _ := strconv.ParseFloat(level[1], 64)
		out = append(out, [2]float64{price, qty})
	}
	return out
}

type priceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// FetchLastPrice returns the current last-trade price for a symbol.
func (c *BinanceClient) FetchLastPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", c.Pair(symbol))

	var raw priceResponse
	if err := c.call(ctx, "/api/v3/ticker/price", params, &raw); err != nil {
		return 0, apperrors.NewMarketError("fetch_last_price", symbol, err)
	}

	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return 0, apperrors.NewMarketError("fetch_last_price", symbol, err)
	}
	return price, nil
}

// FetchCandles returns up to limit OHLCV candles, oldest first.
func (c *BinanceClient) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", c.Pair(symbol))
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	// Kline rows mix number and string cells, so decode cell by cell.
	var raw [][]json.RawMessage
	if err := c.call(ctx, "/api/v3/klines", params, &raw); err != nil {
		return nil, apperrors.NewMarketError("fetch_candles", symbol, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			continue
		}
		open := parseQuotedFloat(k[1])
		high := parseQuotedFloat(k[2])
		low := parseQuotedFloat(k[3])
		closep := parseQuotedFloat(k[4])
		volume := parseQuotedFloat(k[5])
		candles = append(candles, models.Candle{
			Timestamp: time.UnixMilli(openTime).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closep,
			Volume:    volume,
		})
	}
	return candles, nil
}

func parseQuotedFloat(raw json.RawMessage) float64 {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
