package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/camptrades/apiserver/config"
	"github.com/camptrades/apiserver/types"
	"github.com/tidwall/gjson"
)

const dealFinderTimeout = 20 * time.Second

// maxModelResponseBytes caps how much of the model reply is read.
const maxModelResponseBytes = 1 << 20

// DealFinder forwards a free-text query plus the available listings
// to a hosted text-generation model and parses at most one item id
// out of the reply. It keeps no state and has no correctness
// invariant beyond returning a listed id or nothing.
type DealFinder struct {
	cfg    config.DealFinderConfig
	client *http.Client
}

func NewDealFinder(cfg config.DealFinderConfig) *DealFinder {
	return &DealFinder{
		cfg:    cfg,
		client: &http.Client{Timeout: dealFinderTimeout},
	}
}

// Enabled reports whether a model API key is configured.
func (f *DealFinder) Enabled() bool {
	return f.cfg.APIKey != ""
}

// FindBestDeal returns the id of the best-matching available item,
// or "" when the model finds no suitable match. Ids the model invents
// are discarded.
func (f *DealFinder) FindBestDeal(ctx context.Context, query string, items []types.Item) (string, error) {
	prompt, err := buildDealPrompt(query, items)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id": map[string]any{"type": "STRING", "nullable": true},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", f.cfg.BaseURL, f.cfg.Model, f.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxModelResponseBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API returned status %d", resp.StatusCode)
	}

	text := gjson.GetBytes(raw, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", fmt.Errorf("model reply has no content")
	}

	id := gjson.Get(text, "id").String()
	if id == "" {
		return "", nil
	}
	for _, item := range items {
		if item.ID == id {
			return id, nil
		}
	}
	return "", nil
}

// buildDealPrompt renders the matching instructions with the listing
// snapshot the model is allowed to pick from.
func buildDealPrompt(query string, items []types.Item) (string, error) {
	type promptItem struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Price       int    `json:"price"`
		Category    string `json:"category"`
		Condition   string `json:"condition"`
	}

	listed := make([]promptItem, 0, len(items))
	for _, item := range items {
		listed = append(listed, promptItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Price:       item.Price,
			Category:    item.Category,
			Condition:   item.Condition,
		})
	}
	encoded, err := json.Marshal(listed)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are an expert deal finder for a campus marketplace. Below is a list of items available for sale in JSON format.

Items:
%s

The user is looking for: %q

Based on the user's request and the available items, determine the single best item for them. Consider the price, condition, and how well the title and description match the request.

If no suitable item is found, respond with { "id": null }.`, encoded, query)
	return prompt, nil
}
