package scanning

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zombor/receipt-ocr/internal/parsing"
)

// receiptScanPrompt is the shared prompt used by all LLM providers for scanning receipts
const receiptScanPrompt = `You are analyzing a supermarket or shop receipt. It may be printed in French, English or Arabic. Carefully read all text in the image and extract the purchased items and the totals block.

Return ONLY valid JSON in this exact format:
{
  "currency": "MAD",
  "items": [
    {"name": "coca cola", "quantity": 1, "unitPrice": null, "price": 12.00, "unit": "l"}
  ],
  "totals": {
    "subtotal": null,
    "tax": null,
    "total": 31.00,
    "paid": 50.00,
    "change": 19.00
  }
}

Important:
- currency is the ISO 4217 code printed on the receipt ("DH" and "درهم" are MAD)
- name is the product name without quantity, size or price
- quantity is a whole number, 1 when not printed
- unitPrice is only set when a "<quantity> x <unit price>" expression is printed
- price is the line total for the item
- unit is the size unit printed with the name (kg, g, l, ml, ...) or null
- All amounts must be numbers (not strings) with two decimals
- Do not list totals, taxes, payments or change as items
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// llmItem is an item as a vision model returns it; every field may be missing
type llmItem struct {
	Name      string   `json:"name"`
	Quantity  *float64 `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice"`
	Price     *float64 `json:"price"`
	Unit      *string  `json:"unit"`
}

type llmReceipt struct {
	Currency string         `json:"currency"`
	Items    []llmItem      `json:"items"`
	Totals   parsing.Totals `json:"totals"`
}

// parseReceiptJSON parses the JSON response from a vision model into a receipt
func parseReceiptJSON(text string, defaultCurrency string) (*parsing.Receipt, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data llmReceipt
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	return sanitizeReceipt(data, defaultCurrency), nil
}

// sanitizeReceipt holds model output to the same guarantees the OCR parser gives
func sanitizeReceipt(data llmReceipt, defaultCurrency string) *parsing.Receipt {
	currency := strings.ToUpper(strings.TrimSpace(data.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	items := make([]parsing.Item, 0, len(data.Items))
	for _, it := range data.Items {
		name := strings.ToLower(strings.Join(strings.Fields(it.Name), " "))
		if name == "" {
			continue
		}

		quantity := 1
		if it.Quantity != nil && *it.Quantity >= 1 {
			quantity = int(math.Round(*it.Quantity))
		}

		unitPrice := roundMoneyPtr(it.UnitPrice)
		var price float64
		switch {
		case it.Price != nil:
			price = roundMoney(*it.Price)
		case unitPrice != nil:
			price = roundMoney(float64(quantity) * *unitPrice)
		default:
			continue
		}
		if price < 0 {
			continue
		}

		var unit *string
		if it.Unit != nil {
			if u := strings.ToLower(strings.TrimSpace(*it.Unit)); u != "" {
				unit = &u
			}
		}

		items = append(items, parsing.Item{
			Name:      name,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Price:     price,
			Unit:      unit,
		})
	}

	totals := parsing.Totals{
		Subtotal: roundMoneyPtr(data.Totals.Subtotal),
		Tax:      roundMoneyPtr(data.Totals.Tax),
		Total:    roundMoneyPtr(data.Totals.Total),
		Paid:     roundMoneyPtr(data.Totals.Paid),
		Change:   roundMoneyPtr(data.Totals.Change),
	}
	// itemsTotal is recomputed, whatever the model returned
	if len(items) > 0 {
		var sum float64
		for _, it := range items {
			sum += it.Price
		}
		sum = roundMoney(sum)
		totals.ItemsTotal = &sum
	}

	return &parsing.Receipt{
		Currency: currency,
		Items:    items,
		Totals:   totals,
		Raw:      parsing.Raw{Rows: []parsing.Row{}},
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundMoneyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := roundMoney(*v)
	return &r
}
