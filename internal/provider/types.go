package provider

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/walletbridge/internal/pkg/types"
)

// BlockTag references a specific block: a 0x-prefixed number or one of the
// symbolic tags understood by every Ethereum-compatible node.
type BlockTag string

const (
	BlockLatest   BlockTag = "latest"
	BlockPending  BlockTag = "pending"
	BlockEarliest BlockTag = "earliest"
)

// BlockNumberTag builds a BlockTag pinning queries to the given block number.
func BlockNumberTag(n int64) BlockTag {
	return BlockTag(types.HexFromInt(n))
}

// Network is an immutable snapshot of the chain a transport is connected to.
// The core fetches it on demand and never caches it.
type Network struct {
	Name    string
	ChainID int64
	// ENSAddress is the ENS registry contract address, when the chain has a
	// well-known deployment.
	ENSAddress string
}

// Block carries the header fields of a mined block plus the hashes of its
// transactions.
type Block struct {
	Number     int64
	Hash       string
	ParentHash string
	Timestamp  int64
	GasLimit   *big.Int
	GasUsed    *big.Int
	Miner      string
	// BaseFeePerGas is nil for blocks mined before the fee market fork.
	BaseFeePerGas     *big.Int
	TransactionHashes []string
}

// BlockWithTransactions carries the same header fields as Block with the
// transaction records fully materialized. Every entry in Transactions carries
// the block's own number and hash.
type BlockWithTransactions struct {
	Number        int64
	Hash          string
	ParentHash    string
	Timestamp     int64
	GasLimit      *big.Int
	GasUsed       *big.Int
	Miner         string
	BaseFeePerGas *big.Int
	Transactions  []Transaction
}

// Transaction describes a submitted transaction as reported by the chain.
// BlockNumber is zero and BlockHash empty while the transaction is pending.
type Transaction struct {
	Hash             string
	From             string
	To               string // empty for contract creation
	Nonce            int64
	Value            *big.Int
	Gas              *big.Int
	GasPrice         *big.Int
	Input            string
	BlockNumber      int64
	BlockHash        string
	TransactionIndex int64
	ChainID          int64
}

// TransactionReceipt describes the outcome of a mined transaction. A receipt
// exists only once the transaction is mined; pre-mining queries yield an
// absent value, never a partially filled receipt.
type TransactionReceipt struct {
	TransactionHash   string
	Status            bool // true on execution success
	BlockNumber       int64
	BlockHash         string
	GasUsed           *big.Int
	CumulativeGasUsed *big.Int
	ContractAddress   string // set only for contract creations
	Logs              []Log
}

// Log is a single event record emitted during transaction execution.
type Log struct {
	Address         string
	Topics          []string
	Data            string
	BlockNumber     int64
	TransactionHash string
	LogIndex        int64
	Removed         bool
}

// FilterQuery identifies a class of logs by address and ordered topic list,
// optionally bounded to a block range. It doubles as the subscription key for
// log listeners.
type FilterQuery struct {
	Address   string
	Topics    []string
	FromBlock BlockTag
	ToBlock   BlockTag
}

// fingerprint keys a FilterQuery in the listener registry. The block range is
// excluded on purpose: a subscription always tracks the live chain head, so
// two subscriptions to the same address/topics share one poller.
func (q FilterQuery) fingerprint() string {
	return "logs:" + q.Address + "|" + strings.Join(q.Topics, ",")
}

// MarshalJSON encodes the query in the eth_getLogs parameter shape, omitting
// unset fields entirely.
func (q FilterQuery) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if q.Address != "" {
		body["address"] = q.Address
	}
	if len(q.Topics) > 0 {
		body["topics"] = q.Topics
	}
	if q.FromBlock != "" {
		body["fromBlock"] = string(q.FromBlock)
	}
	if q.ToBlock != "" {
		body["toBlock"] = string(q.ToBlock)
	}
	return json.Marshal(body)
}

// ConnectInfo describes a provider "connect" lifecycle event.
type ConnectInfo struct {
	ChainID int64
}

// ProviderMessage is an arbitrary notification forwarded by an injected
// provider, e.g. a subscription update.
type ProviderMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ChainParams is the argument shape of wallet_addEthereumChain.
type ChainParams struct {
	ChainID           types.Hex      `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// NativeCurrency describes the base asset of a chain.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AssetParams is the argument shape of wallet_watchAsset.
type AssetParams struct {
	Type    string       `json:"type"` // e.g. "ERC20"
	Options AssetOptions `json:"options"`
}

// AssetOptions carries the token details for wallet_watchAsset.
type AssetOptions struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

// blockWire is the raw eth_getBlockByNumber result shape. Transactions is
// kept raw so one struct serves both hash-only and full-object responses.
type blockWire struct {
	Number        types.Hex       `json:"number"`
	Hash          string          `json:"hash"`
	ParentHash    string          `json:"parentHash"`
	Timestamp     types.Hex       `json:"timestamp"`
	GasLimit      types.Hex       `json:"gasLimit"`
	GasUsed       types.Hex       `json:"gasUsed"`
	Miner         string          `json:"miner"`
	BaseFeePerGas types.Hex       `json:"baseFeePerGas"`
	Transactions  json.RawMessage `json:"transactions"`
}

// header decodes the quantity fields shared by both block variants.
func (b blockWire) header() (number, timestamp int64, gasLimit, gasUsed, baseFee *big.Int, err error) {
	number = b.Number.Int()
	timestamp = b.Timestamp.Int()

	if gasLimit, err = b.GasLimit.BigInt(); err != nil {
		return 0, 0, nil, nil, nil, fmt.Errorf("block gasLimit: %w", err)
	}
	if gasUsed, err = b.GasUsed.BigInt(); err != nil {
		return 0, 0, nil, nil, nil, fmt.Errorf("block gasUsed: %w", err)
	}
	if !b.BaseFeePerGas.IsEmpty() {
		if baseFee, err = b.BaseFeePerGas.BigInt(); err != nil {
			return 0, 0, nil, nil, nil, fmt.Errorf("block baseFeePerGas: %w", err)
		}
	}

	return number, timestamp, gasLimit, gasUsed, baseFee, nil
}

// toBlock converts the wire shape into a Block with hash-only transactions.
func (b blockWire) toBlock() (*Block, error) {
	number, timestamp, gasLimit, gasUsed, baseFee, err := b.header()
	if err != nil {
		return nil, err
	}

	var hashes []string
	if len(b.Transactions) > 0 {
		if err := json.Unmarshal(b.Transactions, &hashes); err != nil {
			return nil, fmt.Errorf("%w: block transaction hashes: %v", ErrCoercion, err)
		}
	}

	return &Block{
		Number:            number,
		Hash:              b.Hash,
		ParentHash:        b.ParentHash,
		Timestamp:         timestamp,
		GasLimit:          gasLimit,
		GasUsed:           gasUsed,
		Miner:             b.Miner,
		BaseFeePerGas:     baseFee,
		TransactionHashes: hashes,
	}, nil
}

// toBlockWithTransactions converts the wire shape into a
// BlockWithTransactions, stamping every transaction with the parent block's
// number and hash.
func (b blockWire) toBlockWithTransactions() (*BlockWithTransactions, error) {
	number, timestamp, gasLimit, gasUsed, baseFee, err := b.header()
	if err != nil {
		return nil, err
	}

	var txWires []transactionWire
	if len(b.Transactions) > 0 {
		if err := json.Unmarshal(b.Transactions, &txWires); err != nil {
			return nil, fmt.Errorf("%w: block transactions: %v", ErrCoercion, err)
		}
	}

	transactions := make([]Transaction, len(txWires))
	for i, tw := range txWires {
		tx, err := tw.toTransaction()
		if err != nil {
			return nil, err
		}

		tx.BlockNumber = number
		tx.BlockHash = b.Hash
		transactions[i] = *tx
	}

	return &BlockWithTransactions{
		Number:        number,
		Hash:          b.Hash,
		ParentHash:    b.ParentHash,
		Timestamp:     timestamp,
		GasLimit:      gasLimit,
		GasUsed:       gasUsed,
		Miner:         b.Miner,
		BaseFeePerGas: baseFee,
		Transactions:  transactions,
	}, nil
}

// transactionWire is the raw transaction object shape.
type transactionWire struct {
	Hash             string    `json:"hash"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Nonce            types.Hex `json:"nonce"`
	Value            types.Hex `json:"value"`
	Gas              types.Hex `json:"gas"`
	GasPrice         types.Hex `json:"gasPrice"`
	Input            string    `json:"input"`
	BlockNumber      types.Hex `json:"blockNumber"`
	BlockHash        string    `json:"blockHash"`
	TransactionIndex types.Hex `json:"transactionIndex"`
	ChainID          types.Hex `json:"chainId"`
}

func (t transactionWire) toTransaction() (*Transaction, error) {
	value, err := t.Value.BigInt()
	if err != nil {
		return nil, fmt.Errorf("transaction value: %w", err)
	}

	var gas, gasPrice *big.Int
	if !t.Gas.IsEmpty() {
		if gas, err = t.Gas.BigInt(); err != nil {
			return nil, fmt.Errorf("transaction gas: %w", err)
		}
	}
	if !t.GasPrice.IsEmpty() {
		if gasPrice, err = t.GasPrice.BigInt(); err != nil {
			return nil, fmt.Errorf("transaction gasPrice: %w", err)
		}
	}

	return &Transaction{
		Hash:             t.Hash,
		From:             t.From,
		To:               t.To,
		Nonce:            t.Nonce.Int(),
		Value:            value,
		Gas:              gas,
		GasPrice:         gasPrice,
		Input:            t.Input,
		BlockNumber:      t.BlockNumber.Int(),
		BlockHash:        t.BlockHash,
		TransactionIndex: t.TransactionIndex.Int(),
		ChainID:          t.ChainID.Int(),
	}, nil
}

// receiptWire is the raw eth_getTransactionReceipt result shape.
type receiptWire struct {
	TransactionHash   string    `json:"transactionHash"`
	Status            types.Hex `json:"status"`
	BlockNumber       types.Hex `json:"blockNumber"`
	BlockHash         string    `json:"blockHash"`
	GasUsed           types.Hex `json:"gasUsed"`
	CumulativeGasUsed types.Hex `json:"cumulativeGasUsed"`
	ContractAddress   string    `json:"contractAddress"`
	Logs              []logWire `json:"logs"`
}

func (r receiptWire) toReceipt() (*TransactionReceipt, error) {
	gasUsed, err := r.GasUsed.BigInt()
	if err != nil {
		return nil, fmt.Errorf("receipt gasUsed: %w", err)
	}

	var cumulative *big.Int
	if !r.CumulativeGasUsed.IsEmpty() {
		if cumulative, err = r.CumulativeGasUsed.BigInt(); err != nil {
			return nil, fmt.Errorf("receipt cumulativeGasUsed: %w", err)
		}
	}

	logs := make([]Log, len(r.Logs))
	for i, lw := range r.Logs {
		logs[i] = lw.toLog()
	}

	return &TransactionReceipt{
		TransactionHash:   r.TransactionHash,
		Status:            r.Status.Int() == 1,
		BlockNumber:       r.BlockNumber.Int(),
		BlockHash:         r.BlockHash,
		GasUsed:           gasUsed,
		CumulativeGasUsed: cumulative,
		ContractAddress:   r.ContractAddress,
		Logs:              logs,
	}, nil
}

// logWire is the raw log object shape.
type logWire struct {
	Address         string    `json:"address"`
	Topics          []string  `json:"topics"`
	Data            string    `json:"data"`
	BlockNumber     types.Hex `json:"blockNumber"`
	TransactionHash string    `json:"transactionHash"`
	LogIndex        types.Hex `json:"logIndex"`
	Removed         bool      `json:"removed"`
}

func (l logWire) toLog() Log {
	return Log{
		Address:         l.Address,
		Topics:          l.Topics,
		Data:            l.Data,
		BlockNumber:     l.BlockNumber.Int(),
		TransactionHash: l.TransactionHash,
		LogIndex:        l.LogIndex.Int(),
		Removed:         l.Removed,
	}
}
