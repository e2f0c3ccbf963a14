package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// Event names as declared in the contracts
const (
	EventTransfer     = "Transfer"
	EventItemListed   = "ItemListed"
	EventItemBought   = "ItemBought"
	EventItemSold     = "ItemSold"
	EventItemCanceled = "ItemCanceled"
)

// Event signatures
var (
	// ERC721 Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// ItemListed(address indexed seller, address indexed nftAddress, uint256 indexed tokenId, uint256 price)
	ItemListedEventSignature = crypto.Keccak256Hash([]byte("ItemListed(address,address,uint256,uint256)"))

	// ItemBought(address indexed buyer, address indexed nftAddress, uint256 indexed tokenId, uint256 price)
	ItemBoughtEventSignature = crypto.Keccak256Hash([]byte("ItemBought(address,address,uint256,uint256)"))

	// ItemSold(address indexed seller, address indexed buyer, uint256 indexed tokenId, uint256 price)
	ItemSoldEventSignature = crypto.Keccak256Hash([]byte("ItemSold(address,address,uint256,uint256)"))

	// ItemCanceled(address indexed seller, address indexed nftAddress, uint256 indexed tokenId)
	ItemCanceledEventSignature = crypto.Keccak256Hash([]byte("ItemCanceled(address,address,uint256)"))
)

var eventNames = map[common.Hash]string{
	TransferEventSignature:     EventTransfer,
	ItemListedEventSignature:   EventItemListed,
	ItemBoughtEventSignature:   EventItemBought,
	ItemSoldEventSignature:     EventItemSold,
	ItemCanceledEventSignature: EventItemCanceled,
}

// marketplaceABI declares the marketplace events and the ERC721 tokenURI view
const marketplaceABIJSON = `[
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"}],"name":"Transfer","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"seller","type":"address"},{"indexed":true,"name":"nftAddress","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"},{"indexed":false,"name":"price","type":"uint256"}],"name":"ItemListed","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"buyer","type":"address"},{"indexed":true,"name":"nftAddress","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"},{"indexed":false,"name":"price","type":"uint256"}],"name":"ItemBought","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"seller","type":"address"},{"indexed":true,"name":"buyer","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"},{"indexed":false,"name":"price","type":"uint256"}],"name":"ItemSold","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"seller","type":"address"},{"indexed":true,"name":"nftAddress","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"}],"name":"ItemCanceled","type":"event"},
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var contractABI = mustParseABI(marketplaceABIJSON)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid contract ABI: %v", err))
	}
	return parsed
}

// EventName returns the event name of a log topic, or an empty string for untracked topics
func EventName(topic common.Hash) string {
	return eventNames[topic]
}

// DecodedLog holds the arguments of a tracked event log
type DecodedLog struct {
	Name       string
	From       *common.Address
	To         *common.Address
	Seller     *common.Address
	Buyer      *common.Address
	NFTAddress *common.Address
	TokenID    *big.Int
	Price      *big.Int
}

// DecodeLog decodes a tracked event log using its topics and ABI encoded data
func DecodeLog(vLog types.Log) (*DecodedLog, error) {
	if len(vLog.Topics) == 0 {
		return nil, fmt.Errorf("%w: log has no topics", domain.ErrUnknownEvent)
	}

	name := EventName(vLog.Topics[0])
	if name == "" {
		return nil, fmt.Errorf("%w: unknown event signature %s", domain.ErrUnknownEvent, vLog.Topics[0].Hex())
	}

	// Every tracked event has three indexed arguments
	if len(vLog.Topics) != 4 {
		return nil, fmt.Errorf("%w: %s expects 4 topics, got %d", domain.ErrMalformedEvent, name, len(vLog.Topics))
	}

	first := topicAddress(vLog.Topics[1])
	second := topicAddress(vLog.Topics[2])
	decoded := &DecodedLog{
		Name:    name,
		TokenID: new(big.Int).SetBytes(vLog.Topics[3].Bytes()),
	}

	switch name {
	case EventTransfer:
		decoded.From = &first
		decoded.To = &second
		return decoded, nil
	case EventItemListed:
		decoded.Seller = &first
		decoded.NFTAddress = &second
	case EventItemBought:
		decoded.Buyer = &first
		decoded.NFTAddress = &second
	case EventItemSold:
		decoded.Seller = &first
		decoded.Buyer = &second
	case EventItemCanceled:
		decoded.Seller = &first
		decoded.NFTAddress = &second
		return decoded, nil
	}

	price, err := unpackPrice(name, vLog.Data)
	if err != nil {
		return nil, err
	}
	decoded.Price = price

	return decoded, nil
}

// unpackPrice decodes the non-indexed price argument of a marketplace event
func unpackPrice(name string, data []byte) (*big.Int, error) {
	values, err := contractABI.Unpack(name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unpack %s data: %v", domain.ErrMalformedEvent, name, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s expects 1 data argument, got %d", domain.ErrMalformedEvent, name, len(values))
	}

	price, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s price has unexpected type %T", domain.ErrMalformedEvent, name, values[0])
	}
	return price, nil
}

func topicAddress(topic common.Hash) common.Address {
	return common.BytesToAddress(topic.Bytes())
}
