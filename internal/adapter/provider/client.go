package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// refundPath is appended to the API base URL.
const refundPath = "keksrefund"

// Config holds the provider API endpoints.
type Config struct {
	LiveBaseURL string
	TestBaseURL string
	Timeout     time.Duration
}

// Client implements ports.ProviderClient over the provider's merchant API.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger
}

// NewClient creates a provider API client with a traced transport.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	hc := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	rc := resty.NewWithClient(hc).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, cfg: cfg, log: log}
}

// refundBody is the keksrefund request as the provider expects it.
type refundBody struct {
	BillID    string      `json:"bill_id"`
	TID       string      `json:"tid"`
	CID       string      `json:"cid"`
	Amount    json.Number `json:"amount"`
	EpochTime int64       `json:"epochtime"`
	Hash      string      `json:"hash"`
	Algo      int         `json:"algo"`
	Currency  string      `json:"currency"`
}

// replyBody is the provider's answer. Status stays raw so a missing value
// can be told apart from 0.
type replyBody struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
}

// Refund posts a signed refund request and parses the provider's answer.
func (c *Client) Refund(ctx context.Context, testMode bool, req ports.ProviderRefundRequest) (*ports.ProviderReply, error) {
	payload, err := json.Marshal(refundBody{
		BillID:    req.BillID,
		TID:       req.TID,
		CID:       req.CID,
		Amount:    json.Number(req.Amount.String()),
		EpochTime: req.EpochTime,
		Hash:      req.Hash,
		Algo:      req.Algo,
		Currency:  req.Currency,
	})
	if err != nil {
		return nil, apperror.ErrEncodingFailed(err)
	}

	endpoint := c.baseURL(testMode) + refundPath
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		c.log.Error().Err(err).Str("url", endpoint).Msg("provider refund call failed")
		return nil, apperror.ErrNetworkError(err)
	}

	c.log.Debug().
		Str("url", endpoint).
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("provider refund call completed")

	if !resp.IsSuccess() {
		return nil, apperror.ErrProviderRejected(resp.StatusCode())
	}
	return parseReply(resp.Body())
}

func (c *Client) baseURL(testMode bool) string {
	base := c.cfg.LiveBaseURL
	if testMode {
		base = c.cfg.TestBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// parseReply maps the answer body onto a reply. Only an empty body is
// corrupt; anything else without an integer 0 status is a decline.
func parseReply(body []byte) (*ports.ProviderReply, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, apperror.ErrCorruptResponse()
	}

	var rb replyBody
	if err := json.Unmarshal(body, &rb); err != nil {
		return &ports.ProviderReply{}, nil
	}
	status, accepted := parseStatus(rb.Status)
	return &ports.ProviderReply{Accepted: accepted, Status: status, Message: rb.Message}, nil
}

func parseStatus(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch s := v.(type) {
	case json.Number:
		n, err := strconv.ParseInt(s.String(), 10, 64)
		return s.String(), err == nil && n == 0
	case string:
		return s, false
	case nil:
		return "", false
	default:
		return string(raw), false
	}
}
