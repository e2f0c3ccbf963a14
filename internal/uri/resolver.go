package uri

import (
	"fmt"
	"strings"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// Config holds configuration for the URI resolver
type Config struct {
	// IPFSGateway is the gateway prefix ipfs:// URIs are rewritten to, e.g. https://ipfs.io/ipfs/
	IPFSGateway string
}

// Resolver defines the interface for resolving token URIs
//
//go:generate mockgen -source=resolver.go -destination=../mocks/uri_resolver.go -package=mocks -mock_names=Resolver=MockURIResolver
type Resolver interface {
	// Resolve rewrites the URI to a fetchable URL
	// ipfs:// URIs are mapped onto the configured gateway, http(s) and data: URIs are returned unchanged
	Resolve(uri string) (string, error)
}

type resolver struct {
	gateway string
}

// NewResolver creates a new URI resolver
func NewResolver(config *Config) Resolver {
	gateway := domain.DEFAULT_IPFS_GATEWAY
	if config != nil && strings.TrimSpace(config.IPFSGateway) != "" {
		gateway = strings.TrimSpace(config.IPFSGateway)
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	return &resolver{gateway: gateway}
}

func (r *resolver) Resolve(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("empty URI")
	}

	// Handle IPFS URLs, including the ipfs://ipfs/<cid> form
	if path, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		path = strings.TrimPrefix(path, "ipfs/")
		if path == "" {
			return "", fmt.Errorf("invalid IPFS URI: %s", uri)
		}
		return r.gateway + path, nil
	}

	if IsDataURI(uri) {
		return uri, nil
	}

	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri, nil
	}

	return "", fmt.Errorf("unsupported URI scheme: %s", uri)
}
