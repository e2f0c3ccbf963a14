package sync_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/xampe11/nft-marketplace-project/internal/providers/dataapi"
)

// fakeDataAPI is a stateful in-memory data API
type fakeDataAPI struct {
	mu           sync.Mutex
	nfts         map[string]*dataapi.NFT // by token id
	metadata     map[string]map[string]interface{}
	names        map[string]string
	transactions []dataapi.TransactionInput
	calls        map[string]int
	nextID       int

	lookupErr error
	// failures are returned once by the named operation
	failures map[string]error
	// lostResponses apply the named operation and then fail it once
	lostResponses map[string]bool
}

func newFakeDataAPI() *fakeDataAPI {
	return &fakeDataAPI{
		nfts:          make(map[string]*dataapi.NFT),
		metadata:      make(map[string]map[string]interface{}),
		names:         make(map[string]string),
		calls:         make(map[string]int),
		failures:      make(map[string]error),
		lostResponses: make(map[string]bool),
	}
}

func (f *fakeDataAPI) seed(tokenID, owner string) *dataapi.NFT {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	nft := &dataapi.NFT{ID: fmt.Sprintf("nft-%d", f.nextID), TokenID: tokenID, Owner: owner, Creator: owner}
	f.nfts[tokenID] = nft
	return nft
}

func (f *fakeDataAPI) nft(tokenID string) *dataapi.NFT {
	f.mu.Lock()
	defer f.mu.Unlock()

	nft, ok := f.nfts[tokenID]
	if !ok {
		return nil
	}
	c := *nft
	return &c
}

func (f *fakeDataAPI) transactionTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]string, 0, len(f.transactions))
	for _, tx := range f.transactions {
		types = append(types, string(tx.TransactionType))
	}
	return types
}

func (f *fakeDataAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// fail returns the injected failure of an operation, consuming it
func (f *fakeDataAPI) fail(op string) error {
	if err, ok := f.failures[op]; ok {
		delete(f.failures, op)
		return err
	}
	return nil
}

func (f *fakeDataAPI) lost(op string) error {
	if f.lostResponses[op] {
		delete(f.lostResponses, op)
		return &dataapi.Error{Operation: op, Err: errors.New("connection reset by peer")}
	}
	return nil
}

func (f *fakeDataAPI) NFTByTokenID(_ context.Context, tokenID string) (*dataapi.NFT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["NFTByTokenID"]++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	nft, ok := f.nfts[tokenID]
	if !ok {
		return nil, nil
	}
	c := *nft
	return &c, nil
}

func (f *fakeDataAPI) CreateNFT(_ context.Context, input dataapi.CreateNFTInput) (*dataapi.NFT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["CreateNFT"]++
	if err := f.fail("CreateNFT"); err != nil {
		return nil, err
	}
	if _, ok := f.nfts[input.TokenID]; ok {
		return nil, &dataapi.Error{Operation: "CreateNFT", Err: errors.New("duplicate token id")}
	}

	f.nextID++
	nft := &dataapi.NFT{ID: fmt.Sprintf("nft-%d", f.nextID), TokenID: input.TokenID, Owner: input.Owner, Creator: input.Creator}
	f.nfts[input.TokenID] = nft
	f.metadata[input.TokenID] = input.Metadata
	f.names[input.TokenID] = input.Name

	if err := f.lost("CreateNFT"); err != nil {
		return nil, err
	}
	c := *nft
	return &c, nil
}

func (f *fakeDataAPI) UpdateNFT(_ context.Context, input dataapi.UpdateNFTInput) (*dataapi.NFT, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["UpdateNFT"]++
	if err := f.fail("UpdateNFT"); err != nil {
		return nil, err
	}

	var nft *dataapi.NFT
	for _, n := range f.nfts {
		if n.ID == input.ID {
			nft = n
		}
	}
	if nft == nil {
		return nil, &dataapi.Error{Operation: "UpdateNFT", Err: fmt.Errorf("nft %s not found", input.ID)}
	}

	if input.Owner != nil {
		nft.Owner = *input.Owner
	}
	if input.Price != nil {
		price := json.Number(*input.Price)
		nft.Price = &price
	}
	if input.IsListed != nil {
		nft.IsListed = *input.IsListed
	}
	c := *nft
	return &c, nil
}

func (f *fakeDataAPI) RecordTransaction(_ context.Context, input dataapi.TransactionInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["RecordTransaction"]++
	if err := f.fail("RecordTransaction"); err != nil {
		return "", err
	}
	f.transactions = append(f.transactions, input)
	return fmt.Sprintf("tx-%d", len(f.transactions)), nil
}
