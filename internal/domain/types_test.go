package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFromID(t *testing.T) {
	tests := []struct {
		name     string
		chainID  *big.Int
		expected Chain
		numeric  string
		display  string
	}{
		{
			name:     "hardhat",
			chainID:  big.NewInt(31337),
			expected: ChainHardhatLocal,
			numeric:  "31337",
			display:  "localhost",
		},
		{
			name:     "sepolia",
			chainID:  big.NewInt(11155111),
			expected: ChainEthereumSepolia,
			numeric:  "11155111",
			display:  "sepolia",
		},
		{
			name:     "unknown chain keeps identifier as name",
			chainID:  big.NewInt(137),
			expected: Chain("eip155:137"),
			numeric:  "137",
			display:  "eip155:137",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := ChainFromID(tt.chainID)
			assert.Equal(t, tt.expected, chain)
			assert.Equal(t, tt.numeric, chain.ChainID())
			assert.Equal(t, tt.display, chain.Name())
		})
	}
}

func TestChainEvent_Valid(t *testing.T) {
	alice := "0x00000000000000000000000000000000000000a1"
	bob := "0x00000000000000000000000000000000000000b2"
	zero := ETHEREUM_ZERO_ADDRESS
	price := "1.0"

	tests := []struct {
		name     string
		event    ChainEvent
		expected bool
	}{
		{
			name:     "mint with recipient",
			event:    ChainEvent{Kind: EventKindMint, TokenID: "7", From: &zero, To: &alice, TransactionHash: "0x1"},
			expected: true,
		},
		{
			name:     "mint to zero address",
			event:    ChainEvent{Kind: EventKindMint, TokenID: "7", From: &zero, To: &zero, TransactionHash: "0x1"},
			expected: false,
		},
		{
			name:     "transfer from zero address is not a transfer",
			event:    ChainEvent{Kind: EventKindTransfer, TokenID: "7", From: &zero, To: &alice, TransactionHash: "0x1"},
			expected: false,
		},
		{
			name:     "transfer",
			event:    ChainEvent{Kind: EventKindTransfer, TokenID: "7", From: &alice, To: &bob, TransactionHash: "0x1"},
			expected: true,
		},
		{
			name:     "listing without price",
			event:    ChainEvent{Kind: EventKindListed, TokenID: "7", Seller: &alice, TransactionHash: "0x1"},
			expected: false,
		},
		{
			name:     "sale without seller is valid",
			event:    ChainEvent{Kind: EventKindSold, TokenID: "7", Buyer: &bob, Price: &price, TransactionHash: "0x1"},
			expected: true,
		},
		{
			name:     "empty transaction hash",
			event:    ChainEvent{Kind: EventKindCanceled, TokenID: "7"},
			expected: false,
		},
		{
			name:     "unknown kind",
			event:    ChainEvent{Kind: EventKind("burn"), TokenID: "7", TransactionHash: "0x1"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Valid())
		})
	}
}

func TestIsZeroAddress(t *testing.T) {
	assert.True(t, IsZeroAddress(""))
	assert.True(t, IsZeroAddress(ETHEREUM_ZERO_ADDRESS))
	assert.False(t, IsZeroAddress("0x00000000000000000000000000000000000000a1"))
	assert.True(t, EqualAddress("0xABCDEF0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000001"))
}

func TestPosition_Before(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Position
		expected bool
	}{
		{"earlier block", Position{10, 5, 5}, Position{11, 0, 0}, true},
		{"later block", Position{12, 0, 0}, Position{11, 9, 9}, false},
		{"earlier transaction", Position{11, 1, 9}, Position{11, 2, 0}, true},
		{"earlier log", Position{11, 2, 3}, Position{11, 2, 4}, true},
		{"same position", Position{11, 2, 4}, Position{11, 2, 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Before(tt.b))
		})
	}
}

func TestParsePosition(t *testing.T) {
	event := ChainEvent{BlockNumber: 31, TxIndex: 2, LogIndex: 7}
	position := event.Position()
	assert.Equal(t, "31:2:7", position.String())

	parsed, err := ParsePosition(position.String())
	require.NoError(t, err)
	assert.Equal(t, position, parsed)

	for _, invalid := range []string{"", "31", "31:2", "a:2:7", "31:-1:7"} {
		_, err := ParsePosition(invalid)
		assert.Error(t, err, invalid)
	}
}
