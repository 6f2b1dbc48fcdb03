package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeBillID builds the provider-facing bill reference "{tid}-{order_id}".
func EncodeBillID(tid string, orderID int64) string {
	return tid + "-" + strconv.FormatInt(orderID, 10)
}

// DecodeBillID strips the "{tid}-" prefix and parses the order id.
// A bill id without the prefix is parsed as-is.
func DecodeBillID(tid, billID string) (int64, error) {
	raw := strings.TrimPrefix(billID, tid+"-")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid bill id %q", billID)
	}
	return id, nil
}
