package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// RollbackHints is the record state observed before the first mutation of a saga
// It is journaled so a failed saga can be repaired by hand
type RollbackHints struct {
	PrevOwner     *string `json:"prev_owner,omitempty"`
	PrevPrice     *string `json:"prev_price,omitempty"`
	PrevIsListed  *bool   `json:"prev_is_listed,omitempty"`
	CreatedNFTID  *string `json:"created_nft_id,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
	SkippedUpdate bool    `json:"skipped_update,omitempty"` // a newer event was already applied
}

// Fingerprint returns the sha256 of the canonical JSON of an event
// The observing pipeline is not part of the fingerprint
func Fingerprint(event *domain.ChainEvent) (string, error) {
	e := *event
	e.Source = ""

	data, err := json.Marshal(&e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize event: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
