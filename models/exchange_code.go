package models

import (
	"strings"
	"time"
)

type ExchangeCode struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	PerformerName string     `json:"performer_name"`
	IsUsed        bool       `json:"is_used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	OrderID       string     `json:"order_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MarkAsUsed reports false when the code was already consumed.
func (c *ExchangeCode) MarkAsUsed(orderID string, at time.Time) bool {
	if c.IsUsed {
		return false
	}
	c.IsUsed = true
	c.UsedAt = &at
	c.OrderID = orderID
	return true
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CodeValidation struct {
	Code          string `json:"code"`
	Valid         bool   `json:"valid"`
	Message       string `json:"message"`
	PerformerName string `json:"performer_name,omitempty"`
}
