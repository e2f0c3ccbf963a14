package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
)

// ErrTransferNotFound is returned when a transaction receipt holds no matching Transfer log
var ErrTransferNotFound = errors.New("transfer log not found")

// EthereumClient is the chain client used by the sync service
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// ChainID returns the chain id of the connected network
	ChainID(ctx context.Context) (*big.Int, error)

	// BlockNumber returns the current chain head
	BlockNumber(ctx context.Context) (uint64, error)

	// FilterLogs retrieves logs in [query.FromBlock, query.ToBlock], paginating the block range
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// SubscribeFilterLogs subscribes to filter logs
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)

	// ERC721TokenURI fetches the tokenURI from an ERC721 contract
	ERC721TokenURI(ctx context.Context, contractAddress string, tokenID string) (string, error)

	// TransactionHashAt returns the hash of the transaction at position txIndex of a block
	TransactionHashAt(ctx context.Context, blockNumber uint64, txIndex uint) (string, error)

	// TransferSender returns the sender of the ERC721 Transfer of tokenID emitted in a transaction
	TransferSender(ctx context.Context, txHash string, contractAddress string, tokenID string) (string, error)

	// Close closes the connection
	Close()
}

// ClientConfig holds the chain client settings
type ClientConfig struct {
	// RequestTimeout bounds every single RPC call
	RequestTimeout time.Duration
	// LogPageSize is the initial number of blocks requested per eth_getLogs call
	LogPageSize uint64
	// CallMaxElapsedTime bounds the retries of contract calls
	CallMaxElapsedTime time.Duration
}

type ethereumClient struct {
	client adapter.EthClient
	config ClientConfig
}

// NewClient creates a new chain client
func NewClient(client adapter.EthClient, config ClientConfig) EthereumClient {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}
	if config.LogPageSize == 0 {
		config.LogPageSize = 10000
	}
	if config.CallMaxElapsedTime <= 0 {
		config.CallMaxElapsedTime = time.Minute
	}
	return &ethereumClient{client: client, config: config}
}

// Dial connects to a node and creates a chain client on top of the connection
func Dial(ctx context.Context, dialer adapter.EthClientDialer, url string, config ClientConfig) (EthereumClient, error) {
	client, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewClient(client, config), nil
}

func (c *ethereumClient) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	chainID, err := c.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return chainID, nil
}

func (c *ethereumClient) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	number, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return number, nil
}

func (c *ethereumClient) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.client.SubscribeFilterLogs(ctx, query, ch)
}

// FilterLogs handles pagination of the block range to work around provider result limits
func (c *ethereumClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	// If blockhash is specified, use it directly (no pagination needed)
	if query.BlockHash != nil {
		timeoutCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
		return c.client.FilterLogs(timeoutCtx, query)
	}

	var fromBlock, toBlock uint64
	if query.FromBlock != nil {
		fromBlock = query.FromBlock.Uint64()
	}

	if query.ToBlock != nil {
		toBlock = query.ToBlock.Uint64()
	} else {
		latest, err := c.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		toBlock = latest
	}

	if fromBlock > toBlock {
		return nil, nil
	}

	return c.getLogsWithRetry(ctx, query, fromBlock, toBlock)
}

// getLogsWithRetry processes the range [fromBlock, toBlock] in chunks
// The chunk size is halved whenever the provider rejects a query for returning too many results
func (c *ethereumClient) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, fromBlock, toBlock uint64) ([]types.Log, error) {
	stepSize := c.config.LogPageSize

	var allLogs []types.Log
	currentFrom := fromBlock

	for currentFrom <= toBlock {
		currentTo := currentFrom + stepSize - 1
		if currentTo > toBlock || currentTo < currentFrom {
			currentTo = toBlock
		}

		queryCopy := query
		queryCopy.FromBlock = new(big.Int).SetUint64(currentFrom)
		queryCopy.ToBlock = new(big.Int).SetUint64(currentTo)

		timeoutCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		logs, err := c.client.FilterLogs(timeoutCtx, queryCopy)
		cancel()
		if err == nil {
			allLogs = append(allLogs, logs...)
			if currentTo == toBlock {
				break
			}
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) || stepSize == 1 {
			return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", currentFrom, currentTo, err)
		}

		stepSize = stepSize / 2

		logger.Warn("Too many results, reducing step size",
			zap.Uint64("oldStepSize", stepSize*2),
			zap.Uint64("newStepSize", stepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range")
}

// isExecutionError reports errors that a retry cannot fix
func isExecutionError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "execution reverted") ||
		strings.Contains(errStr, "invalid opcode") ||
		strings.Contains(errStr, "out of gas")
}

// ERC721TokenURI fetches the tokenURI from an ERC721 contract
// Transport errors are retried with exponential backoff, reverts are returned immediately
func (c *ethereumClient) ERC721TokenURI(ctx context.Context, contractAddress string, tokenID string) (string, error) {
	tokenNumber, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token number: %s", tokenID)
	}

	data, err := contractABI.Pack("tokenURI", tokenNumber)
	if err != nil {
		return "", fmt.Errorf("failed to pack data: %w", err)
	}

	contractAddr := common.HexToAddress(contractAddress)
	var result []byte
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		out, err := c.client.CallContract(callCtx, ethereum.CallMsg{
			To:   &contractAddr,
			Data: data,
		}, nil)
		if err != nil {
			if isExecutionError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = out
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = c.config.CallMaxElapsedTime

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "tokenURI call failed, retrying",
			zap.Error(err),
			zap.String("contract", contractAddress),
			zap.String("tokenId", tokenID),
			zap.Duration("retryIn", d))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return "", fmt.Errorf("failed to call contract: %w", err)
	}

	var uri string
	if err := contractABI.UnpackIntoInterface(&uri, "tokenURI", result); err != nil {
		return "", fmt.Errorf("failed to unpack result: %w", err)
	}

	return uri, nil
}

// TransactionHashAt returns the hash of the transaction at txIndex in the given block
func (c *ethereumClient) TransactionHashAt(ctx context.Context, blockNumber uint64, txIndex uint) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return "", fmt.Errorf("failed to get block %d: %w", blockNumber, err)
	}

	txs := block.Transactions()
	if int(txIndex) >= len(txs) {
		return "", fmt.Errorf("transaction index %d out of range for block %d with %d transactions", txIndex, blockNumber, len(txs))
	}

	return txs[txIndex].Hash().Hex(), nil
}

// TransferSender scans the transaction receipt for the Transfer of tokenID on the given contract
func (c *ethereumClient) TransferSender(ctx context.Context, txHash string, contractAddress string, tokenID string) (string, error) {
	tokenNumber, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token number: %s", tokenID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return "", fmt.Errorf("failed to get receipt of %s: %w", txHash, err)
	}

	contractAddr := common.HexToAddress(contractAddress)
	tokenTopic := common.BigToHash(tokenNumber)
	for _, vLog := range receipt.Logs {
		if vLog == nil || vLog.Address != contractAddr {
			continue
		}
		if len(vLog.Topics) != 4 || vLog.Topics[0] != TransferEventSignature || vLog.Topics[3] != tokenTopic {
			continue
		}
		return topicAddress(vLog.Topics[1]).Hex(), nil
	}

	return "", fmt.Errorf("%w: token %s in %s", ErrTransferNotFound, tokenID, txHash)
}

// Close closes the connection
func (c *ethereumClient) Close() {
	c.client.Close()
}
