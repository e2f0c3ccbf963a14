package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
)

// Client is the GraphQL data API client
//
//go:generate mockgen -source=client.go -destination=../../mocks/dataapi_client.go -package=mocks -mock_names=Client=MockDataAPIClient
type Client interface {
	// NFTByTokenID returns the NFT record of a token, or nil when the token has no record
	NFTByTokenID(ctx context.Context, tokenID string) (*NFT, error)

	// CreateNFT creates an NFT record
	CreateNFT(ctx context.Context, input CreateNFTInput) (*NFT, error)

	// UpdateNFT updates the given fields of an NFT record
	UpdateNFT(ctx context.Context, input UpdateNFTInput) (*NFT, error)

	// RecordTransaction appends a transaction record and returns its id
	RecordTransaction(ctx context.Context, input TransactionInput) (string, error)
}

// Config holds the data API client configuration
type Config struct {
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// operation is a parsed GraphQL document
type operation struct {
	name     string
	document string
}

type client struct {
	config     Config
	httpClient adapter.HTTPClient
	json       adapter.JSON
	limiter    *rate.Limiter

	nftByTokenID      operation
	createNFT         operation
	updateNFT         operation
	recordTransaction operation
}

// NewClient creates a new data API client
// The operation documents are parsed upfront so a malformed document fails at startup
func NewClient(config Config, httpClient adapter.HTTPClient, json adapter.JSON) (Client, error) {
	limit := rate.Inf
	burst := 1
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
		burst = max(1, int(config.RequestsPerSecond))
	}

	c := &client{
		config:     config,
		httpClient: httpClient,
		json:       json,
		limiter:    rate.NewLimiter(limit, burst),
	}

	for _, op := range []struct {
		target   *operation
		document string
	}{
		{&c.nftByTokenID, nftByTokenIDDocument},
		{&c.createNFT, createNFTDocument},
		{&c.updateNFT, updateNFTDocument},
		{&c.recordTransaction, recordTransactionDocument},
	} {
		parsed, err := parseOperation(op.document)
		if err != nil {
			return nil, err
		}
		*op.target = parsed
	}

	return c, nil
}

// parseOperation parses a document holding exactly one named operation
func parseOperation(document string) (operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: document})
	if err != nil {
		return operation{}, fmt.Errorf("failed to parse graphql document: %w", err)
	}
	if len(doc.Operations) != 1 || doc.Operations[0].Name == "" {
		return operation{}, errors.New("graphql document must hold exactly one named operation")
	}
	return operation{name: doc.Operations[0].Name, document: document}, nil
}

func (c *client) NFTByTokenID(ctx context.Context, tokenID string) (*NFT, error) {
	var data struct {
		NFTs []NFT `json:"nfts"`
	}
	if err := c.do(ctx, c.nftByTokenID, map[string]interface{}{"tokenId": tokenID}, &data); err != nil {
		return nil, err
	}
	if len(data.NFTs) == 0 {
		return nil, nil
	}
	return &data.NFTs[0], nil
}

func (c *client) CreateNFT(ctx context.Context, input CreateNFTInput) (*NFT, error) {
	variables := map[string]interface{}{
		"tokenId":     input.TokenID,
		"name":        input.Name,
		"description": input.Description,
		"image":       input.Image,
		"owner":       input.Owner,
		"creator":     input.Creator,
	}
	if input.Metadata != nil {
		variables["metadata"] = input.Metadata
	}

	var data struct {
		CreateNFT *NFT `json:"createNFT"`
	}
	if err := c.do(ctx, c.createNFT, variables, &data); err != nil {
		return nil, err
	}
	if data.CreateNFT == nil {
		return nil, &Error{Operation: c.createNFT.name, Err: errors.New("empty createNFT result")}
	}
	return data.CreateNFT, nil
}

func (c *client) UpdateNFT(ctx context.Context, input UpdateNFTInput) (*NFT, error) {
	variables := map[string]interface{}{"id": input.ID}
	if input.Owner != nil {
		variables["owner"] = *input.Owner
	}
	if input.Price != nil {
		variables["price"] = json.Number(*input.Price)
	}
	if input.IsListed != nil {
		variables["isListed"] = *input.IsListed
	}

	var data struct {
		UpdateNFT *NFT `json:"updateNFT"`
	}
	if err := c.do(ctx, c.updateNFT, variables, &data); err != nil {
		return nil, err
	}
	if data.UpdateNFT == nil {
		return nil, &Error{Operation: c.updateNFT.name, Err: fmt.Errorf("nft %s not updated", input.ID)}
	}
	return data.UpdateNFT, nil
}

func (c *client) RecordTransaction(ctx context.Context, input TransactionInput) (string, error) {
	variables := map[string]interface{}{
		"nftId":           input.NFTID,
		"from":            input.From,
		"to":              input.To,
		"transactionType": string(input.TransactionType),
		"transactionHash": input.TransactionHash,
	}
	if input.Price != nil {
		variables["price"] = json.Number(*input.Price)
	}
	if input.Currency != nil {
		variables["currency"] = *input.Currency
	}

	var data struct {
		RecordTransaction *struct {
			ID string `json:"id"`
		} `json:"recordTransaction"`
	}
	if err := c.do(ctx, c.recordTransaction, variables, &data); err != nil {
		return "", err
	}
	if data.RecordTransaction == nil {
		return "", &Error{Operation: c.recordTransaction.name, Err: errors.New("empty recordTransaction result")}
	}
	return data.RecordTransaction.ID, nil
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors"`
}

// do posts an operation and decodes its data into out
func (c *client) do(ctx context.Context, op operation, variables map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Operation: op.name, Err: err}
	}

	body, err := c.json.Marshal(graphqlRequest{
		Query:         op.document,
		Variables:     variables,
		OperationName: op.name,
	})
	if err != nil {
		return &Error{Operation: op.name, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	logger.DebugCtx(ctx, "Sending data API request", zap.String("operation", op.name))

	respBody, err := c.httpClient.Post(ctx, c.config.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		apiErr := &Error{Operation: op.name, Err: err}
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) {
			apiErr.StatusCode = statusErr.StatusCode
			// GraphQL servers report validation failures with a 400 and an errors body
			var resp graphqlResponse
			if c.json.Unmarshal([]byte(statusErr.Body), &resp) == nil {
				apiErr.Errors = resp.Errors
			}
		}
		return apiErr
	}

	var resp graphqlResponse
	if err := c.json.Unmarshal(respBody, &resp); err != nil {
		return &Error{Operation: op.name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		return &Error{Operation: op.name, Errors: resp.Errors}
	}
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return &Error{Operation: op.name, Err: errors.New("response has no data")}
	}

	if err := c.json.Unmarshal(resp.Data, out); err != nil {
		return &Error{Operation: op.name, Err: fmt.Errorf("failed to decode data: %w", err)}
	}
	return nil
}
