// Package metrics estimates the size of an export: bytes, lines and tokens
// per file, aggregated by a small worker pool.
package metrics

import (
	"bytes"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is the tokenizer used by the tiktoken estimator.
const DefaultModel = "gpt-3.5-turbo"

// Counter measures one piece of text.
type Counter interface {
	// Count returns the number of bytes, tokens, and lines in text
	Count(text []byte) (bytes, tokens, lines int)
}

// SimpleCounter estimates tokens as bytes/4.
type SimpleCounter struct{}

func (SimpleCounter) Count(text []byte) (int, int, int) {
	return len(text), EstimateTokens(len(text)), countLines(text)
}

// EstimateTokens is the bytes/4 approximation used wherever exact counts
// are too expensive, e.g. the status line.
func EstimateTokens(size int) int {
	return size / 4
}

// TiktokenCounter counts tokens with a model's BPE encoding.
type TiktokenCounter struct {
	model    string
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding for model.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken: %s: %w", model, err)
	}
	return &TiktokenCounter{model: model, encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text []byte) (int, int, int) {
	tokens := c.encoding.Encode(string(text), nil, nil)
	return len(text), len(tokens), countLines(text)
}

// Model is the tokenizer's model name.
func (c *TiktokenCounter) Model() string {
	return c.model
}

// NewCounter returns the counter named by estimator: "simple" or "tiktoken".
func NewCounter(estimator string) (Counter, error) {
	return newCounter(estimator, DefaultModel)
}

func newCounter(estimator, model string) (Counter, error) {
	switch estimator {
	case "", "simple":
		return SimpleCounter{}, nil
	case "tiktoken":
		c, err := NewTiktokenCounter(model)
		if err != nil {
			return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", estimator)
	}
}

func countLines(text []byte) int {
	if len(text) == 0 {
		return 0
	}
	n := bytes.Count(text, []byte{'\n'})
	if text[len(text)-1] != '\n' {
		n++
	}
	return n
}
