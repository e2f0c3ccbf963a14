package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

const (
	// ContractMarketplace is the network mapping key of the marketplace contract
	ContractMarketplace = "NftMarketplace"
	// ContractNFT is the network mapping key of the ERC-721 contract
	ContractNFT = "BasicNft"
)

// NetworkMapping maps chain ids to deployed contract addresses by contract name
type NetworkMapping map[string]map[string][]string

// Contracts holds the tracked contract addresses of one chain
type Contracts struct {
	NFT         common.Address
	Marketplace common.Address
}

// LoadNetworkMapping reads a network mapping JSON file
func LoadNetworkMapping(path string) (NetworkMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network mapping: %w", err)
	}

	return ParseNetworkMapping(data)
}

// ParseNetworkMapping decodes a network mapping document
func ParseNetworkMapping(data []byte) (NetworkMapping, error) {
	var mapping NetworkMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse network mapping: %w", err)
	}
	return mapping, nil
}

// Contracts returns the first NFT and marketplace addresses deployed on a chain
func (m NetworkMapping) Contracts(chainID string) (*Contracts, error) {
	deployments, ok := m[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %s", domain.ErrUnsupportedChain, chainID)
	}

	nft, err := firstAddress(deployments, ContractNFT)
	if err != nil {
		return nil, err
	}
	market, err := firstAddress(deployments, ContractMarketplace)
	if err != nil {
		return nil, err
	}

	return &Contracts{NFT: nft, Marketplace: market}, nil
}

func firstAddress(deployments map[string][]string, name string) (common.Address, error) {
	addresses := deployments[name]
	if len(addresses) == 0 {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrMissingContractAddress, name)
	}

	address := strings.TrimSpace(addresses[0])
	if !common.IsHexAddress(address) || domain.IsZeroAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %s has invalid address %q", domain.ErrMissingContractAddress, name, address)
	}

	return common.HexToAddress(address), nil
}
