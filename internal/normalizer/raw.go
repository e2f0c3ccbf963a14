package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"

	ethprovider "github.com/xampe11/nft-marketplace-project/internal/providers/ethereum"
)

// RawEvent is a provider specific event payload
// It is either a *LegacyLog or a *ModernLog
type RawEvent interface {
	// EventName returns the contract event name carried by the payload
	EventName() string
	// Block returns the block number the payload was emitted in
	Block() uint64

	isRawEvent()
}

// LegacyLog is an undecoded log as delivered by eth_getLogs or eth_subscribe
type LegacyLog struct {
	Log types.Log
}

func (l *LegacyLog) EventName() string {
	if len(l.Log.Topics) == 0 {
		return ""
	}
	return ethprovider.EventName(l.Log.Topics[0])
}

func (l *LegacyLog) Block() uint64 {
	return l.Log.BlockNumber
}

func (*LegacyLog) isRawEvent() {}

// ModernLog is an event decoded by a web3 style provider
type ModernLog struct {
	Event            string                     `json:"event"`
	Address          string                     `json:"address"`
	BlockNumber      Quantity                   `json:"blockNumber"`
	TransactionIndex *Quantity                  `json:"transactionIndex,omitempty"`
	LogIndex         Quantity                   `json:"logIndex"`
	TransactionHash  string                     `json:"transactionHash,omitempty"`
	Transaction      *HashHolder                `json:"transaction,omitempty"`
	Log              *LogHashHolder             `json:"log,omitempty"`
	ReturnValues     map[string]json.RawMessage `json:"returnValues"`
	Removed          bool                       `json:"removed"`
}

// HashHolder is the transaction object attached to some provider payloads
type HashHolder struct {
	Hash string `json:"hash"`
}

// LogHashHolder is the raw log object attached to some provider payloads
type LogHashHolder struct {
	TransactionHash string `json:"transactionHash"`
}

func (m *ModernLog) EventName() string {
	return m.Event
}

func (m *ModernLog) Block() uint64 {
	return uint64(m.BlockNumber)
}

func (*ModernLog) isRawEvent() {}

// ParseModernLog decodes a JSON provider payload
func ParseModernLog(data []byte) (*ModernLog, error) {
	var m ModernLog
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}
	if m.Event == "" {
		return nil, fmt.Errorf("event payload has no event name")
	}
	return &m, nil
}

// Quantity is an unsigned integer encoded as a JSON number, a decimal string or a 0x hex string
type Quantity uint64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}

	n, ok := ParseBigInt(s)
	if !ok || !n.IsUint64() {
		return fmt.Errorf("invalid quantity: %s", string(data))
	}

	*q = Quantity(n.Uint64())
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(q), 10)), nil
}

// ParseBigInt parses a non-negative integer in decimal or 0x prefixed hex form
func ParseBigInt(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		if hex == "" {
			return new(big.Int), true
		}
		return new(big.Int).SetString(hex, 16)
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}
