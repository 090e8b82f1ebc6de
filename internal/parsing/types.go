package parsing

// Point is an [x, y] pixel coordinate as emitted by the OCR backend
type Point [2]float64

// Fragment is one recognized text span from the OCR backend
type Fragment struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Box   []Point `json:"box"`
}

// OCRResult is the OCR backend response. Only Lines is read by the parser.
type OCRResult struct {
	Lang  *string    `json:"lang"`
	Score float64    `json:"score"`
	Text  string     `json:"text,omitempty"`
	Lines []Fragment `json:"lines"`
}

// Token is a fragment reduced to its text, left edge, vertical center and extent
type Token struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

// Row is a set of tokens judged to lie on the same printed line, ordered left to right
type Row struct {
	Y      float64 `json:"y"`
	Tokens []Token `json:"tokens"`
	Text   string  `json:"text"`
}

// Item is one purchased line
type Item struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice"`
	Price     float64  `json:"price"`
	Unit      *string  `json:"unit"`
}

// Totals holds the receipt footer values. Nil means not found.
type Totals struct {
	ItemsTotal *float64 `json:"itemsTotal"`
	Subtotal   *float64 `json:"subtotal"`
	Tax        *float64 `json:"tax"`
	Total      *float64 `json:"total"`
	Paid       *float64 `json:"paid"`
	Change     *float64 `json:"change"`
}

// Raw carries the intermediate rows for debugging and tuning
type Raw struct {
	Rows []Row `json:"rows"`
}

// Receipt is the structured result of a parse
type Receipt struct {
	Currency string `json:"currency"`
	Items    []Item `json:"items"`
	Totals   Totals `json:"totals"`
	Raw      Raw    `json:"raw"`
}
