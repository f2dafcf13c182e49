package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TransferEvent is a single token transfer fetched from the ledger API.
// Payload keeps the record exactly as received for replay and debugging;
// the typed fields are parsed out of it at fetch time.
type TransferEvent struct {
	Hash            string
	Timestamp       int64
	BlockNumber     uint64
	From            string
	To              string
	ContractAddress string
	Value           string
	TokenName       string
	TokenSymbol     string
	TokenDecimal    int32
	Payload         json.RawMessage
}

// TokenAmount converts the raw integer Value into a token amount by
// shifting the decimal point left by TokenDecimal places.
func (e TransferEvent) TokenAmount() (decimal.Decimal, error) {
	raw, err := decimal.NewFromString(e.Value)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Shift(-e.TokenDecimal), nil
}

// USDValue returns the USD total for the transfer at the given token
// price, rounded to cents.
func (e TransferEvent) USDValue(price decimal.Decimal) (decimal.Decimal, error) {
	amount, err := e.TokenAmount()
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(price).Round(2), nil
}
