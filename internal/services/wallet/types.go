package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	Currency     string
	HistoryLimit int
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Balance metrics
	RecordBalanceChange(userID uint, delta decimal.Decimal)

	// Error metrics
	RecordError(operation, errType string)
}
