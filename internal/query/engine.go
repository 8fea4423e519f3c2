// Package query runs jq expressions over rendered profiles and timelines.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"
)

// DefaultCompiledCacheSize is the number of compiled expressions kept.
const DefaultCompiledCacheSize = 64

// Engine executes jq expressions. Compiled expressions are cached, so an
// agent re-running the same expression against fresh data skips parsing.
type Engine struct {
	compiled *lru.Cache[string, *gojq.Code]
}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	c, err := lru.New[string, *gojq.Code](DefaultCompiledCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Engine{compiled: c}
}

// Options controls a query.
type Options struct {
	Deduplicate bool
	MaxResults  int // 0 means unlimited
}

// Result contains the results of a jq query.
type Result struct {
	Values    []any    `json:"values"`           // Extracted values
	Errors    []string `json:"errors,omitempty"` // Runtime errors, deduplicated
	RawCount  int      `json:"raw_count"`        // Count before deduplication
	Truncated bool     `json:"truncated"`
}

// Query evaluates expression against input. input must already be in the
// shape produced by json.Unmarshal into any; see Normalize.
func (e *Engine) Query(ctx context.Context, input any, expression string, opts Options) (*Result, error) {
	code, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{Values: make([]any, 0)}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			msg := formatJQError(err)
			if !seenErrors[msg] {
				result.Errors = append(result.Errors, msg)
				seenErrors[msg] = true
			}
			continue
		}
		if v == nil {
			continue
		}

		result.RawCount++
		if opts.Deduplicate {
			key := valueKey(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		if opts.MaxResults > 0 && len(result.Values) >= opts.MaxResults {
			result.Truncated = true
			break
		}
		result.Values = append(result.Values, v)
	}

	return result, nil
}

// ValidateExpression checks if a jq expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Engine) compile(expression string) (*gojq.Code, error) {
	if code, ok := e.compiled.Get(expression); ok {
		return code, nil
	}

	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	e.compiled.Add(expression, code)
	return code, nil
}

// Normalize converts v to the generic JSON representation gojq operates on:
// maps, slices, float64, string, bool and nil.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}
	return out, nil
}

// formatJQError adds a hint to the common runtime errors. gojq reports these
// as plain errors, so the hints are chosen by message text.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	errStr := err.Error()
	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this profile)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	return errStr + hint
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64, int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
