package posting

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// Load reads postings from the JSON file the scraping pipeline wrote.
// Both a bare array and an {"items": [...]} envelope are accepted.
func Load(path string) (*Postings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read postings file: %w", err)
	}

	var envelope struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Items == nil {
		var bare []map[string]any
		if err := json.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("parse postings file %s: %w", path, err)
		}
		envelope.Items = bare
	}

	return FromItems(envelope.Items)
}

// FromItems decodes generic scraped items into typed postings. Unknown
// fields are dropped; missing fields stay at their zero values so a partial
// record never blocks the batch.
func FromItems(items []map[string]any) (*Postings, error) {
	var postings []*Posting

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &postings,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build postings decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}

	return &Postings{Items: postings}, nil
}
