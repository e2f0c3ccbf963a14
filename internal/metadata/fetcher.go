package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/uri"
)

const (
	PLACEHOLDER_NAME        = "Unknown NFT"
	PLACEHOLDER_DESCRIPTION = "Metadata could not be fetched"
)

// Metadata is the token metadata document used to create an NFT record
type Metadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	Raw         map[string]interface{} `json:"-"`
	// Placeholder is set when the document could not be fetched
	Placeholder bool `json:"-"`
}

// Document returns the metadata object sent to the data API
func (m *Metadata) Document() map[string]interface{} {
	if len(m.Raw) > 0 {
		return m.Raw
	}
	return map[string]interface{}{
		"name":        m.Name,
		"description": m.Description,
		"image":       m.Image,
	}
}

// Placeholder returns the metadata used when fetching fails
func Placeholder() *Metadata {
	return &Metadata{
		Name:        PLACEHOLDER_NAME,
		Description: PLACEHOLDER_DESCRIPTION,
		Image:       "",
		Placeholder: true,
	}
}

// TokenURIReader reads the token URI of an ERC-721 token
type TokenURIReader interface {
	ERC721TokenURI(ctx context.Context, contractAddress string, tokenID string) (string, error)
}

// Fetcher defines the interface for fetching token metadata
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/metadata_fetcher.go -package=mocks -mock_names=Fetcher=MockMetadataFetcher
type Fetcher interface {
	// Fetch reads the token URI from the contract and fetches the metadata document
	// It never fails: any error yields the placeholder metadata
	Fetch(ctx context.Context, contractAddress string, tokenID string) *Metadata

	// FetchURI fetches and decodes the metadata document behind a token URI
	FetchURI(ctx context.Context, tokenURI string) (*Metadata, error)
}

type fetcher struct {
	tokenURIReader TokenURIReader
	httpClient     adapter.HTTPClient
	uriResolver    uri.Resolver
	json           adapter.JSON
	timeout        time.Duration
}

// NewFetcher creates a new metadata fetcher
func NewFetcher(tokenURIReader TokenURIReader, httpClient adapter.HTTPClient, uriResolver uri.Resolver, json adapter.JSON, timeout time.Duration) Fetcher {
	return &fetcher{
		tokenURIReader: tokenURIReader,
		httpClient:     httpClient,
		uriResolver:    uriResolver,
		json:           json,
		timeout:        timeout,
	}
}

func (f *fetcher) Fetch(ctx context.Context, contractAddress string, tokenID string) *Metadata {
	tokenURI, err := f.tokenURIReader.ERC721TokenURI(ctx, contractAddress, tokenID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to read token URI, using placeholder metadata",
			zap.Error(err),
			zap.String("contract", contractAddress),
			zap.String("tokenId", tokenID))
		return Placeholder()
	}

	m, err := f.FetchURI(ctx, tokenURI)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to fetch metadata, using placeholder metadata",
			zap.Error(err),
			zap.String("tokenURI", tokenURI),
			zap.String("tokenId", tokenID))
		return Placeholder()
	}

	return m
}

func (f *fetcher) FetchURI(ctx context.Context, tokenURI string) (*Metadata, error) {
	resolved, err := f.uriResolver.Resolve(tokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token URI: %w", err)
	}

	var body []byte
	if uri.IsDataURI(resolved) {
		parsed, err := uri.ParseDataURI(resolved)
		if err != nil {
			return nil, err
		}
		body = parsed.DecodedData
	} else {
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}

		body, err = f.httpClient.Get(ctx, resolved)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch URL: %w", err)
		}
	}

	if !f.json.Valid(body) {
		// Sniff the body so a gateway returning an image or an HTML error page is visible in logs
		mtype := mimetype.Detect(body)
		return nil, fmt.Errorf("metadata is not JSON: detected %s", mtype.String())
	}

	var raw map[string]interface{}
	if err := f.json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return normalize(raw), nil
}

// normalize picks the fields of the OpenSea metadata standard used by the marketplace
func normalize(raw map[string]interface{}) *Metadata {
	m := &Metadata{Raw: raw}
	if n, ok := raw["name"].(string); ok {
		m.Name = n
	}
	if d, ok := raw["description"].(string); ok {
		m.Description = d
	}
	if i, ok := raw["image"].(string); ok {
		m.Image = i
	} else if i, ok := raw["image_url"].(string); ok {
		m.Image = i
	}
	return m
}
