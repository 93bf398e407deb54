// Package fetcher retrieves a transaction body and its execution receipt
// through the provider pool. The two reads run as independent failover
// scans: due to indexing lag a provider may have one but not the other.
package fetcher

import (
	"context"

	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"github.com/txplain-labs/txplain/pkg/providerPool"
	"go.uber.org/zap"
)

type Fetcher struct {
	Pool   *providerPool.Pool
	Logger *zap.Logger
}

func NewFetcher(pool *providerPool.Pool, l *zap.Logger) *Fetcher {
	return &Fetcher{
		Pool:   pool,
		Logger: l,
	}
}

// FetchedTransaction combines a transaction body with its receipt. Either
// field may be nil: a nil Transaction means no provider has seen the hash,
// a nil Receipt means the transaction is pending or not yet indexed.
type FetchedTransaction struct {
	Hash        string
	Transaction *ethereum.EthereumTransaction
	Receipt     *ethereum.EthereumTransactionReceipt
}

// IsMined reports whether the transaction is known to be included in a block.
func (ft *FetchedTransaction) IsMined() bool {
	if ft.Receipt != nil {
		return true
	}
	return ft.Transaction != nil && !ft.Transaction.IsPending()
}

// FetchTransaction fetches the body and receipt for hash. It returns an
// error only when both reads exhausted the provider pool; partial data is
// a valid result the caller interprets (pending, still indexing).
func (f *Fetcher) FetchTransaction(ctx context.Context, hash string) (*FetchedTransaction, error) {
	tx, txErr := providerPool.Read(ctx, f.Pool, "getTransactionByHash", func(ctx context.Context, client *ethereum.Client) (*ethereum.EthereumTransaction, error) {
		return client.GetTransactionByHash(ctx, hash)
	})
	if txErr != nil {
		f.Logger.Sugar().Warnw("failed to fetch transaction from any provider",
			zap.String("transactionHash", hash),
			zap.Error(txErr),
		)
	}

	receipt, receiptErr := providerPool.Read(ctx, f.Pool, "getTransactionReceipt", func(ctx context.Context, client *ethereum.Client) (*ethereum.EthereumTransactionReceipt, error) {
		return client.GetTransactionReceipt(ctx, hash)
	})
	if receiptErr != nil {
		f.Logger.Sugar().Warnw("failed to fetch receipt from any provider",
			zap.String("transactionHash", hash),
			zap.Error(receiptErr),
		)
	}

	if txErr != nil && receiptErr != nil {
		return nil, txErr
	}

	return &FetchedTransaction{
		Hash:        hash,
		Transaction: tx,
		Receipt:     receipt,
	}, nil
}
