package dataapi

import (
	"encoding/json"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// NFT is the NFT record held by the data API
type NFT struct {
	ID       string       `json:"id"`
	TokenID  string       `json:"tokenId"`
	Owner    string       `json:"owner"`
	Creator  string       `json:"creator,omitempty"`
	Price    *json.Number `json:"price,omitempty"`
	Currency *string      `json:"currency,omitempty"`
	IsListed bool         `json:"isListed"`
}

// CreateNFTInput holds the variables of the createNFT mutation
type CreateNFTInput struct {
	TokenID     string
	Name        string
	Description string
	Image       string
	Owner       string
	Creator     string
	Metadata    map[string]interface{}
}

// UpdateNFTInput holds the variables of the updateNFT mutation
// Nil fields are left untouched by the data API
type UpdateNFTInput struct {
	ID       string
	Owner    *string
	Price    *string // decimal ether amount
	IsListed *bool
}

// TransactionInput holds the variables of the recordTransaction mutation
type TransactionInput struct {
	NFTID           string
	From            string
	To              string
	Price           *string // decimal ether amount
	Currency        *string
	TransactionType domain.TransactionType
	TransactionHash string
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}
