package receipt

import (
	"time"

	"github.com/zombor/receipt-ocr/internal/parsing"
)

// Receipt is an uploaded receipt image together with what was read from it
type Receipt struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	Scanner     string          `json:"scanner"` // Name of the scanner that read the receipt
	Parsed      parsing.Receipt `json:"parsed"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
