package dedup

import (
	"strconv"
	"strings"
	"sync"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

type state uint8

const (
	stateInFlight state = iota + 1
	stateProcessed
)

// Ledger records the identities of events handed to the sync engine
// It is shared by the backfill and the live pipelines and lives for the process lifetime
type Ledger struct {
	mu      sync.Mutex
	entries map[string]state
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]state)}
}

// TryAcquire marks an identity in flight
// It returns false when the identity is already in flight or processed
func (l *Ledger) TryAcquire(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[identity]; ok {
		return false
	}
	l.entries[identity] = stateInFlight
	return true
}

// MarkProcessed marks an identity as terminally processed
func (l *Ledger) MarkProcessed(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[identity] = stateProcessed
}

// Release forgets an in-flight identity so a redelivery can be retried
// Processed identities are kept
func (l *Ledger) Release(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries[identity] == stateInFlight {
		delete(l.entries, identity)
	}
}

// Processed reports whether an identity was terminally processed
func (l *Ledger) Processed(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.entries[identity] == stateProcessed
}

// Len returns the number of known identities
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Identity builds the ledger key of an event emitted in a block
// Callers pass the block the event was emitted in, so backfill and live deliveries of one log share a key
// Format: kind|from|to|seller|buyer|tokenId|blockNumber with lower-cased addresses
func Identity(event *domain.ChainEvent, blockNumber uint64) string {
	parts := []string{
		string(event.Kind),
		strings.ToLower(domain.SafeString(event.From)),
		strings.ToLower(domain.SafeString(event.To)),
		strings.ToLower(domain.SafeString(event.Seller)),
		strings.ToLower(domain.SafeString(event.Buyer)),
		event.TokenID,
		strconv.FormatUint(blockNumber, 10),
	}
	return strings.Join(parts, "|")
}
