package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kekspay-gateway/internal/adapter/http/dto"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CallbackPath is the fixed IPN endpoint registered with the provider.
const CallbackPath = "/wc-api/wc-kekspay"

const (
	tokenParam  = "token"
	tokenScheme = "Token "
)

// IPNHandler receives provider payment callbacks.
type IPNHandler struct {
	ipnSvc ports.IPNService
	log    zerolog.Logger
}

// NewIPNHandler creates a new IPNHandler.
func NewIPNHandler(ipnSvc ports.IPNService, log zerolog.Logger) *IPNHandler {
	return &IPNHandler{ipnSvc: ipnSvc, log: log}
}

// Handle serves GET and POST on CallbackPath. The provider only looks at
// the status field of the reply: 0 acknowledges, -1 rejects.
func (h *IPNHandler) Handle(c *gin.Context) {
	params, bodyToken, err := callbackParams(c)
	if err != nil {
		h.log.Debug().Err(err).Msg("callback body could not be decoded")
	}

	result, err := h.ipnSvc.Handle(c.Request.Context(), ports.CallbackRequest{
		Token:    callbackToken(c, bodyToken),
		Params:   dto.SanitizeParams(params),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.ProviderRejected(c, err)
		return
	}

	if result != nil {
		h.log.Debug().
			Int64("order_id", result.OrderID).
			Str("payment_status", string(result.PaymentStatus)).
			Bool("applied", result.Applied).
			Msg("callback accepted")
	}
	response.ProviderAccepted(c)
}

// callbackToken resolves the auth token from the query string, then the
// request body, then the Authorization header. The "Token " scheme prefix is
// optional in the header.
func callbackToken(c *gin.Context, bodyToken string) string {
	if token := c.Query(tokenParam); token != "" {
		return token
	}
	if bodyToken != "" {
		return bodyToken
	}
	header := c.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, tokenScheme))
}

// callbackParams decodes a JSON object body when one is sent and otherwise
// falls back to form and query values. The token is split off the params
// and returned separately when it came in the body.
func callbackParams(c *gin.Context) (map[string]string, string, error) {
	params := make(map[string]string)

	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return params, "", fmt.Errorf("read callback body: %w", err)
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
			if err := decodeJSONParams(trimmed, params); err != nil {
				return params, "", err
			}
			token := params[tokenParam]
			delete(params, tokenParam)
			return params, token, nil
		}
	}

	if err := c.Request.ParseForm(); err != nil {
		return params, "", fmt.Errorf("parse callback form: %w", err)
	}
	for key, values := range c.Request.Form {
		if key == tokenParam || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	return params, c.Request.PostForm.Get(tokenParam), nil
}

func decodeJSONParams(body []byte, into map[string]string) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode callback json: %w", err)
	}
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			into[key] = ""
		case string:
			into[key] = v
		case json.Number:
			into[key] = v.String()
		case bool:
			into[key] = fmt.Sprintf("%t", v)
		default:
			encoded, _ := json.Marshal(v)
			into[key] = string(encoded)
		}
	}
	return nil
}
