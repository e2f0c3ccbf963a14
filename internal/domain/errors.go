package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrUnsupportedChain is returned when the connected chain has no network mapping
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrMissingContractAddress is returned when the network mapping lacks a contract address
	ErrMissingContractAddress = errors.New("missing contract address")

	// ErrUnknownEvent is returned when a raw event does not match any tracked signature
	ErrUnknownEvent = errors.New("unknown event")

	// ErrMalformedEvent is returned when a raw event lacks fields required by its kind
	ErrMalformedEvent = errors.New("malformed event")

	// ErrForeignContract is returned when an event concerns a contract that is not tracked
	ErrForeignContract = errors.New("foreign contract")

	// ErrRemovedLog is returned for logs removed by a chain reorganization
	ErrRemovedLog = errors.New("log removed by reorg")

	// ErrTransient marks failures that happened before any mutation and may be retried
	ErrTransient = errors.New("transient failure")

	// ErrMutationFailed marks a data API mutation that failed after the saga started
	ErrMutationFailed = errors.New("mutation failed")

	// ErrNFTNotFound is returned when a token has no record in the data store
	ErrNFTNotFound = errors.New("nft not found")
)
