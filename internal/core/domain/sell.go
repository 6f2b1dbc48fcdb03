package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// QRTypeSell is the only qr_type the provider accepts for webshop sales.
const QRTypeSell = 1

// SellPayload is the payment request shown to the customer as a deep link
// and QR code. Callback URLs are only carried by the deep link.
type SellPayload struct {
	QRType     int    `json:"qr_type"`
	CID        string `json:"cid"`
	TID        string `json:"tid"`
	BillID     string `json:"bill_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	SuccessURL string `json:"success_url,omitempty"`
	FailURL    string `json:"fail_url,omitempty"`
}

// MarshalJSON renders amount as a JSON number.
func (p SellPayload) MarshalJSON() ([]byte, error) {
	type alias SellPayload
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"amount"`
	}{alias: alias(p), Amount: json.Number(p.Amount)})
}

// Query encodes the payload as deep link query parameters.
func (p SellPayload) Query() url.Values {
	q := url.Values{}
	q.Set("qr_type", strconv.Itoa(p.QRType))
	q.Set("cid", p.CID)
	q.Set("tid", p.TID)
	q.Set("bill_id", p.BillID)
	q.Set("amount", p.Amount)
	q.Set("currency", p.Currency)
	if p.SuccessURL != "" {
		q.Set("success_url", p.SuccessURL)
	}
	if p.FailURL != "" {
		q.Set("fail_url", p.FailURL)
	}
	return q
}
