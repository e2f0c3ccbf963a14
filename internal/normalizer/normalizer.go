package normalizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	ethprovider "github.com/xampe11/nft-marketplace-project/internal/providers/ethereum"
)

// TransactionLookup recovers a transaction hash from the chain
type TransactionLookup interface {
	TransactionHashAt(ctx context.Context, blockNumber uint64, txIndex uint) (string, error)
}

// Config holds the tracked contracts
type Config struct {
	NFTAddress         common.Address
	MarketplaceAddress common.Address
}

// Normalizer converts raw provider payloads to canonical events
//
//go:generate mockgen -source=normalizer.go -destination=../mocks/normalizer.go -package=mocks -mock_names=Normalizer=MockNormalizer
type Normalizer interface {
	// Normalize returns the canonical event of a raw payload
	// Errors concern that single payload only
	Normalize(ctx context.Context, raw RawEvent) (*domain.ChainEvent, error)
}

type normalizer struct {
	config Config
	lookup TransactionLookup
	clock  adapter.Clock
}

// New creates a new normalizer
func New(config Config, lookup TransactionLookup, clock adapter.Clock) Normalizer {
	return &normalizer{
		config: config,
		lookup: lookup,
		clock:  clock,
	}
}

func (n *normalizer) Normalize(ctx context.Context, raw RawEvent) (*domain.ChainEvent, error) {
	switch r := raw.(type) {
	case *LegacyLog:
		return n.normalizeLegacy(ctx, r)
	case *ModernLog:
		return n.normalizeModern(ctx, r)
	default:
		return nil, fmt.Errorf("%w: unsupported raw event %T", domain.ErrUnknownEvent, raw)
	}
}

func (n *normalizer) normalizeLegacy(ctx context.Context, l *LegacyLog) (*domain.ChainEvent, error) {
	if l.Log.Removed {
		return nil, domain.ErrRemovedLog
	}

	decoded, err := ethprovider.DecodeLog(l.Log)
	if err != nil {
		return nil, err
	}

	if err := n.checkContracts(decoded, l.Log.Address); err != nil {
		return nil, err
	}

	event := fromDecoded(decoded)
	event.ContractAddress = l.Log.Address.Hex()
	event.BlockNumber = l.Log.BlockNumber
	event.TxIndex = l.Log.TxIndex
	event.LogIndex = l.Log.Index

	if l.Log.TxHash != (common.Hash{}) {
		event.TransactionHash = l.Log.TxHash.Hex()
		event.HashSource = domain.HashSourceEvent
	} else {
		n.recoverHash(ctx, event, true)
	}

	return validate(event)
}

func (n *normalizer) normalizeModern(ctx context.Context, m *ModernLog) (*domain.ChainEvent, error) {
	if m.Removed {
		return nil, domain.ErrRemovedLog
	}

	decoded, err := decodeReturnValues(m.Event, m.ReturnValues)
	if err != nil {
		return nil, err
	}

	var emitter common.Address
	if m.Address != "" {
		if !common.IsHexAddress(m.Address) {
			return nil, fmt.Errorf("%w: invalid emitter address %q", domain.ErrMalformedEvent, m.Address)
		}
		emitter = common.HexToAddress(m.Address)
	} else if decoded.Name == ethprovider.EventTransfer {
		emitter = n.config.NFTAddress
	} else {
		emitter = n.config.MarketplaceAddress
	}

	if err := n.checkContracts(decoded, emitter); err != nil {
		return nil, err
	}

	event := fromDecoded(decoded)
	event.ContractAddress = emitter.Hex()
	event.BlockNumber = uint64(m.BlockNumber)
	event.LogIndex = uint(m.LogIndex)
	if m.TransactionIndex != nil {
		event.TxIndex = uint(*m.TransactionIndex)
	}

	// Probe the payload for a transaction hash in priority order
	switch {
	case m.TransactionHash != "":
		event.TransactionHash = m.TransactionHash
		event.HashSource = domain.HashSourceEvent
	case m.Transaction != nil && m.Transaction.Hash != "":
		event.TransactionHash = m.Transaction.Hash
		event.HashSource = domain.HashSourceTransaction
	case m.Log != nil && m.Log.TransactionHash != "":
		event.TransactionHash = m.Log.TransactionHash
		event.HashSource = domain.HashSourceLog
	default:
		n.recoverHash(ctx, event, m.TransactionIndex != nil)
	}

	return validate(event)
}

// recoverHash asks the chain for the transaction hash and falls back to a synthetic one
func (n *normalizer) recoverHash(ctx context.Context, event *domain.ChainEvent, canLookup bool) {
	if canLookup && n.lookup != nil {
		hash, err := n.lookup.TransactionHashAt(ctx, event.BlockNumber, event.TxIndex)
		if err == nil && hash != "" {
			logger.WarnCtx(ctx, "Transaction hash missing from event, recovered from chain",
				zap.String("kind", string(event.Kind)),
				zap.String("tokenId", event.TokenID),
				zap.Uint64("block", event.BlockNumber))
			event.TransactionHash = hash
			event.HashSource = domain.HashSourceLookup
			return
		}
		if err != nil {
			logger.WarnCtx(ctx, "Failed to look up transaction hash", zap.Error(err), zap.Uint64("block", event.BlockNumber))
		}
	}

	event.TransactionHash = n.syntheticHash()
	event.HashSource = domain.HashSourceSynthetic
	logger.WarnCtx(ctx, "Transaction hash unavailable, using synthetic hash",
		zap.String("kind", string(event.Kind)),
		zap.String("tokenId", event.TokenID),
		zap.String("hash", event.TransactionHash))
}

func (n *normalizer) syntheticHash() string {
	random, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("%s%d-%s", domain.SYNTHETIC_HASH_PREFIX, n.clock.Now().UnixMilli(), random)
}

// checkContracts rejects events of untracked contracts
func (n *normalizer) checkContracts(decoded *ethprovider.DecodedLog, emitter common.Address) error {
	if decoded.Name == ethprovider.EventTransfer {
		if emitter != n.config.NFTAddress {
			return fmt.Errorf("%w: transfer emitted by %s", domain.ErrForeignContract, emitter.Hex())
		}
		return nil
	}

	if emitter != n.config.MarketplaceAddress {
		return fmt.Errorf("%w: %s emitted by %s", domain.ErrForeignContract, decoded.Name, emitter.Hex())
	}
	if decoded.NFTAddress != nil && *decoded.NFTAddress != n.config.NFTAddress {
		return fmt.Errorf("%w: %s concerns %s", domain.ErrForeignContract, decoded.Name, decoded.NFTAddress.Hex())
	}
	return nil
}

func fromDecoded(d *ethprovider.DecodedLog) *domain.ChainEvent {
	event := &domain.ChainEvent{
		TokenID: d.TokenID.String(),
		From:    addressPtr(d.From),
		To:      addressPtr(d.To),
		Seller:  addressPtr(d.Seller),
		Buyer:   addressPtr(d.Buyer),
	}
	if d.Price != nil {
		price := WeiToEther(d.Price)
		event.Price = &price
	}

	switch d.Name {
	case ethprovider.EventTransfer:
		if d.From != nil && *d.From == (common.Address{}) {
			event.Kind = domain.EventKindMint
		} else {
			event.Kind = domain.EventKindTransfer
		}
	case ethprovider.EventItemListed:
		event.Kind = domain.EventKindListed
	case ethprovider.EventItemBought, ethprovider.EventItemSold:
		event.Kind = domain.EventKindSold
	case ethprovider.EventItemCanceled:
		event.Kind = domain.EventKindCanceled
	}

	return event
}

func validate(event *domain.ChainEvent) (*domain.ChainEvent, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: %s event of token %s lacks required fields", domain.ErrMalformedEvent, event.Kind, event.TokenID)
	}
	return event, nil
}

func addressPtr(a *common.Address) *string {
	if a == nil {
		return nil
	}
	hex := a.Hex()
	return &hex
}

// eventArguments lists the decoded arguments of each tracked event
var eventArguments = map[string][]string{
	ethprovider.EventTransfer:     {"from", "to", "tokenId"},
	ethprovider.EventItemListed:   {"seller", "nftAddress", "tokenId", "price"},
	ethprovider.EventItemBought:   {"buyer", "nftAddress", "tokenId", "price"},
	ethprovider.EventItemSold:     {"seller", "buyer", "tokenId", "price"},
	ethprovider.EventItemCanceled: {"seller", "nftAddress", "tokenId"},
}

// decodeReturnValues builds the decoded arguments of a provider decoded event
func decodeReturnValues(name string, values map[string]json.RawMessage) (*ethprovider.DecodedLog, error) {
	arguments, ok := eventArguments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEvent, name)
	}

	decoded := &ethprovider.DecodedLog{Name: name}
	for _, argument := range arguments {
		raw, ok := values[argument]
		if !ok {
			return nil, fmt.Errorf("%w: %s lacks %s", domain.ErrMalformedEvent, name, argument)
		}
		value := scalar(raw)

		switch argument {
		case "tokenId", "price":
			n, ok := ParseBigInt(value)
			if !ok {
				return nil, fmt.Errorf("%w: %s has invalid %s %q", domain.ErrMalformedEvent, name, argument, value)
			}
			if argument == "tokenId" {
				decoded.TokenID = n
			} else {
				decoded.Price = n
			}
		default:
			if !common.IsHexAddress(value) {
				return nil, fmt.Errorf("%w: %s has invalid %s %q", domain.ErrMalformedEvent, name, argument, value)
			}
			address := common.HexToAddress(value)
			switch argument {
			case "from":
				decoded.From = &address
			case "to":
				decoded.To = &address
			case "seller":
				decoded.Seller = &address
			case "buyer":
				decoded.Buyer = &address
			case "nftAddress":
				decoded.NFTAddress = &address
			}
		}
	}

	return decoded, nil
}

// scalar returns the text of a JSON string or number
func scalar(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	return s
}
