// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline.
package types

import "time"

// Paper holds the metadata of a single arXiv paper fetched during a run.
// Immutable once constructed; papers live for one run only.
type Paper struct {
	// ID is the arXiv identifier with the version suffix stripped
	// (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the submission timestamp, normalized to the
	// configured timezone.
	Published time.Time `json:"published" yaml:"published"`

	// Link is the canonical abstract page URL.
	Link string `json:"link" yaml:"link"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// JournalRef is the journal reference if the feed carries one.
	JournalRef string `json:"journal_ref,omitempty" yaml:"journal_ref,omitempty"`
}

// RecommendedPaper pairs a fetched paper with the model's stated reason
// for recommending it.
type RecommendedPaper struct {
	Paper  Paper  `json:"paper" yaml:"paper"`
	Reason string `json:"reason" yaml:"reason"`
}

// RecommendationMap groups recommended papers by lower-cased category
// label. Within a category the slice preserves the order items appeared
// in the model's reply. A paper may appear under more than one category.
type RecommendationMap map[string][]RecommendedPaper

// Count returns the total number of recommendations across all categories.
func (m RecommendationMap) Count() int {
	n := 0
	for _, papers := range m {
		n += len(papers)
	}
	return n
}
