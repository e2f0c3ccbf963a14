package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainHardhatLocal    Chain = "eip155:31337"
)

// ChainFromID builds the CAIP-2 identifier for an EVM chain id
func ChainFromID(chainID *big.Int) Chain {
	return Chain(fmt.Sprintf("eip155:%s", chainID.String()))
}

// ChainID returns the numeric part of an EVM CAIP-2 identifier
func (c Chain) ChainID() string {
	_, id, found := strings.Cut(string(c), ":")
	if !found {
		return string(c)
	}
	return id
}

// Name returns a human readable name for known chains
func (c Chain) Name() string {
	switch c {
	case ChainEthereumMainnet:
		return "mainnet"
	case ChainEthereumSepolia:
		return "sepolia"
	case ChainHardhatLocal:
		return "localhost"
	default:
		return string(c)
	}
}

// EventKind represents the kind of a canonical marketplace event
type EventKind string

const (
	EventKindMint     EventKind = "mint"
	EventKindTransfer EventKind = "transfer"
	EventKindListed   EventKind = "listed"
	EventKindSold     EventKind = "sold"
	EventKindCanceled EventKind = "canceled"
)

// EventKinds lists every tracked event kind in a stable order
var EventKinds = []EventKind{
	EventKindMint,
	EventKindTransfer,
	EventKindListed,
	EventKindSold,
	EventKindCanceled,
}

// TransactionType is the transaction type recorded in the data store
type TransactionType string

const (
	TransactionTypeMint     TransactionType = "MINT"
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
	TransactionTypeList     TransactionType = "LIST"
	TransactionTypeUnlist   TransactionType = "UNLIST"
)

// HashSource records where the transaction hash of a canonical event came from
type HashSource string

const (
	HashSourceEvent       HashSource = "event"
	HashSourceTransaction HashSource = "transaction"
	HashSourceLog         HashSource = "log"
	HashSourceLookup      HashSource = "lookup"
	HashSourceSynthetic   HashSource = "synthetic"
)

// EventSource identifies the pipeline a canonical event was observed on
type EventSource string

const (
	EventSourceBackfill  EventSource = "backfill"
	EventSourceLive      EventSource = "live"
	EventSourceJetStream EventSource = "jetstream"
)

// ChainEvent is the canonical, provider-agnostic representation of a marketplace event
type ChainEvent struct {
	Kind            EventKind   `json:"kind"`
	TokenID         string      `json:"token_id"`         // decimal token id
	ContractAddress string      `json:"contract_address"` // emitting contract
	From            *string     `json:"from,omitempty"`   // transfer sender (zero address for mints)
	To              *string     `json:"to,omitempty"`     // transfer recipient
	Seller          *string     `json:"seller,omitempty"` // marketplace seller
	Buyer           *string     `json:"buyer,omitempty"`  // marketplace buyer
	Price           *string     `json:"price,omitempty"`  // price in ether
	BlockNumber     uint64      `json:"block_number"`     // block number
	TxIndex         uint        `json:"tx_index"`         // transaction index in the block
	LogIndex        uint        `json:"log_index"`        // log index in the block
	TransactionHash string      `json:"transaction_hash"` // never empty
	HashSource      HashSource  `json:"hash_source"`      // where the hash came from
	Source          EventSource `json:"source,omitempty"` // pipeline that observed the event
}

// SyntheticHash reports whether the transaction hash was generated locally
func (e *ChainEvent) SyntheticHash() bool {
	return e.HashSource == HashSourceSynthetic
}

// Position returns the chain position of the event
func (e *ChainEvent) Position() Position {
	return Position{BlockNumber: e.BlockNumber, TxIndex: e.TxIndex, LogIndex: e.LogIndex}
}

// Position locates a log in the chain
type Position struct {
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
}

// Before reports whether p precedes o in chain order
func (p Position) Before(o Position) bool {
	if p.BlockNumber != o.BlockNumber {
		return p.BlockNumber < o.BlockNumber
	}
	if p.TxIndex != o.TxIndex {
		return p.TxIndex < o.TxIndex
	}
	return p.LogIndex < o.LogIndex
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.BlockNumber, p.TxIndex, p.LogIndex)
}

// ParsePosition parses a position in the block:tx:log form
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("invalid position %q", s)
	}

	block, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Position{}, fmt.Errorf("invalid block of position %q: %w", s, err)
	}
	tx, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Position{}, fmt.Errorf("invalid tx index of position %q: %w", s, err)
	}
	log, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Position{}, fmt.Errorf("invalid log index of position %q: %w", s, err)
	}

	return Position{BlockNumber: block, TxIndex: uint(tx), LogIndex: uint(log)}, nil
}

// Valid checks the fields required by the event kind
func (e *ChainEvent) Valid() bool {
	if e.TokenID == "" || e.TransactionHash == "" {
		return false
	}

	switch e.Kind {
	case EventKindMint:
		return e.To != nil && !IsZeroAddress(*e.To)
	case EventKindTransfer:
		return e.From != nil && e.To != nil && !IsZeroAddress(*e.From)
	case EventKindListed:
		return e.Seller != nil && e.Price != nil
	case EventKindSold:
		return e.Buyer != nil && e.Price != nil
	case EventKindCanceled:
		return true
	default:
		return false
	}
}

// IsZeroAddress checks if an address is empty or the zero address
func IsZeroAddress(address string) bool {
	return address == "" || strings.EqualFold(address, ETHEREUM_ZERO_ADDRESS)
}

// EqualAddress compares two hex addresses case-insensitively
func EqualAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// SafeString returns the value of a string pointer or an empty string
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to a string
func StringPtr(s string) *string {
	return &s
}
