package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zombor/receipt-ocr/internal/parsing"
)

// Gemini implements the Scanner interface using Google Gemini
type Gemini struct {
	client          *genai.Client
	model           *genai.GenerativeModel
	defaultCurrency string
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string, defaultCurrency string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)

	return &Gemini{
		client:          client,
		model:           model,
		defaultCurrency: defaultCurrency,
	}, nil
}

// ScanReceipt asks the model to read the receipt and sanitizes its answer
func (g *Gemini) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*parsing.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	finalImageData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// genai.ImageData expects just the format suffix, and everything is PNG by now
	parts := []genai.Part{
		genai.ImageData("png", finalImageData),
		genai.Text(receiptScanPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	receipt, err := parseReceiptJSON(responseText.String(), g.defaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("parsing receipt data: %w", err)
	}

	return receipt, nil
}

// Name returns "gemini"
func (g *Gemini) Name() string {
	return "gemini"
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
