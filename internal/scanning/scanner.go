package scanning

import (
	"context"

	"github.com/zombor/receipt-ocr/internal/parsing"
)

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt reads a receipt image or PDF and returns its structured content
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*parsing.Receipt, error)
	// Name identifies the scanner in stored receipts
	Name() string
	// Close closes the scanner and releases resources
	Close() error
}
