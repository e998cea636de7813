// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend turns a model reply into a validated recommendation map.
//
// The model is asked to respond with a JSON array of
// {paper_id, category, reason} objects. ParseRecommendations validates
// that reply strictly: any structural defect or unknown paper identifier
// aborts the whole batch. A digest quietly missing papers is worse than a
// loud failure, so there is no partial-acceptance mode.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrorKind classifies a rejected model reply.
type ErrorKind string

const (
	KindEmptyResponse   ErrorKind = "empty_response"
	KindMalformedJSON   ErrorKind = "malformed_json"
	KindNotAnArray      ErrorKind = "not_an_array"
	KindItemNotObject   ErrorKind = "item_not_object"
	KindInvalidPaperID  ErrorKind = "invalid_paper_id"
	KindInvalidCategory ErrorKind = "invalid_category"
	KindInvalidReason   ErrorKind = "invalid_reason"
	KindUnknownPaperID  ErrorKind = "unknown_paper_id"
)

// ParseError reports why a model reply was rejected. Raw carries the
// full model text for postmortem.
type ParseError struct {
	Kind   ErrorKind
	Detail string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s\nraw response:\n%s", e.Kind, e.Detail, e.Raw)
}

// Backend abstracts the model call so the validation logic can be tested
// with canned text. Complete sends one prompt pair and returns the raw
// reply; retries and rate limits are the implementation's concern.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Recommend prompts the backend with the papers and interests, then
// parses and validates the reply into a RecommendationMap.
func Recommend(ctx context.Context, backend Backend, papers []types.Paper, interests []string) (types.RecommendationMap, error) {
	userPrompt, err := BuildUserPrompt(papers, interests)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	raw, err := backend.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	return ParseRecommendations(raw, papers)
}

// ParseRecommendations validates raw against the expected schema and
// cross-references every paper_id against papers. On any defect it
// returns a *ParseError carrying the raw text and no partial map.
func ParseRecommendations(raw string, papers []types.Paper) (types.RecommendationMap, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Kind: KindEmptyResponse, Detail: "model returned empty response"}
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ParseError{Kind: KindMalformedJSON, Detail: err.Error(), Raw: raw}
	}

	elements, ok := parsed.([]any)
	if !ok {
		return nil, &ParseError{
			Kind:   KindNotAnArray,
			Detail: fmt.Sprintf("reply must be a JSON array, got %T", parsed),
			Raw:    raw,
		}
	}

	result := make(types.RecommendationMap)
	for idx, element := range elements {
		obj, ok := element.(map[string]any)
		if !ok {
			return nil, &ParseError{
				Kind:   KindItemNotObject,
				Detail: fmt.Sprintf("item %d must be an object, got %T", idx, element),
				Raw:    raw,
			}
		}

		paperID, ok := nonEmptyString(obj["paper_id"])
		if !ok {
			return nil, &ParseError{
				Kind:   KindInvalidPaperID,
				Detail: fmt.Sprintf("missing or invalid paper_id at item %d", idx),
				Raw:    raw,
			}
		}

		category, ok := nonEmptyString(obj["category"])
		if !ok {
			return nil, &ParseError{
				Kind:   KindInvalidCategory,
				Detail: fmt.Sprintf("missing or invalid category at item %d", idx),
				Raw:    raw,
			}
		}

		reason := ""
		if rawReason, present := obj["reason"]; present {
			s, isString := rawReason.(string)
			if !isString {
				return nil, &ParseError{
					Kind:   KindInvalidReason,
					Detail: fmt.Sprintf("reason at item %d must be a string, got %T", idx, rawReason),
					Raw:    raw,
				}
			}
			reason = s
		}

		paper, found := findPaper(papers, paperID)
		if !found {
			return nil, &ParseError{
				Kind:   KindUnknownPaperID,
				Detail: fmt.Sprintf("paper_id %q at item %d is not among the fetched papers", paperID, idx),
				Raw:    raw,
			}
		}

		bucket := strings.ToLower(category)
		result[bucket] = append(result[bucket], types.RecommendedPaper{Paper: paper, Reason: reason})
	}

	return result, nil
}

// nonEmptyString reports whether v is a string that is non-empty after
// trimming, returning the trimmed value.
func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// findPaper scans papers for an exact, case-sensitive ID match.
func findPaper(papers []types.Paper, id string) (types.Paper, bool) {
	for _, p := range papers {
		if p.ID == id {
			return p, true
		}
	}
	return types.Paper{}, false
}
