package scanning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/zombor/receipt-ocr/internal/parsing"
)

// Paddle implements the Scanner interface with a PaddleOCR HTTP service and
// the local receipt parser
type Paddle struct {
	ocrURL string
	langs  string
	parser *parsing.Parser
	client *http.Client
}

// NewPaddle creates a new Paddle Scanner instance.
// langs is the comma separated language list passed to the OCR service.
func NewPaddle(ocrURL string, langs string, parser *parsing.Parser) (*Paddle, error) {
	if parser == nil {
		return nil, fmt.Errorf("receipt parser is required")
	}
	if ocrURL == "" {
		ocrURL = "http://localhost:8000/ocr"
	}
	if langs == "" {
		langs = "en,french,arabic"
	}
	if _, err := url.Parse(ocrURL); err != nil {
		return nil, fmt.Errorf("parsing OCR url: %w", err)
	}

	return &Paddle{
		ocrURL: ocrURL,
		langs:  langs,
		parser: parser,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ScanReceipt sends the image to the OCR service and parses the recognized lines
func (p *Paddle) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*parsing.Receipt, error) {
	pngData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	ocr, err := p.Recognize(ctx, pngData)
	if err != nil {
		return nil, err
	}

	receipt := p.parser.Parse(*ocr)
	return &receipt, nil
}

// Recognize posts a PNG to the OCR service and returns its raw response
func (p *Paddle) Recognize(ctx context.Context, pngData []byte) (*parsing.OCRResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="receipt.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := part.Write(pngData); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	u, err := url.Parse(p.ocrURL)
	if err != nil {
		return nil, fmt.Errorf("parsing OCR url: %w", err)
	}
	q := u.Query()
	q.Set("langs", p.langs)
	q.Set("merge", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, string(body))
	}

	var ocr parsing.OCRResult
	if err := json.NewDecoder(resp.Body).Decode(&ocr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	slog.Info("OCR complete", "lines", len(ocr.Lines), "score", ocr.Score, "duration", time.Since(start))

	return &ocr, nil
}

// Name returns "paddle"
func (p *Paddle) Name() string {
	return "paddle"
}

// Close closes the Paddle client (no-op for HTTP client)
func (p *Paddle) Close() error {
	return nil
}
