// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest renders a recommendation map into the artifacts that
// get emailed: a Markdown digest and an optional CSL-YAML bibliography.
package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// WriteDigest renders the recommendation map as Markdown into dir and
// returns the file path. Categories are rendered in sorted order; papers
// within a category keep the order the model returned them in. An empty
// map renders a digest saying so rather than failing.
func WriteDigest(recs types.RecommendationMap, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("digest-%s.md", now.Format("2006-01-02")))
	content := renderMarkdown(recs, now)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing digest: %w", err)
	}
	return path, nil
}

func renderMarkdown(recs types.RecommendationMap, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Paper Digest — %s\n\n", now.Format("January 2, 2006"))

	if len(recs) == 0 {
		b.WriteString("No new recommended papers today.\n")
		return b.String()
	}

	categories := make([]string, 0, len(recs))
	for c := range recs {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(&b, "## %s\n\n", titleCase(category))
		for _, rec := range recs[category] {
			p := rec.Paper
			fmt.Fprintf(&b, "### [%s](%s)\n\n", p.Title, p.Link)
			if len(p.Authors) > 0 {
				fmt.Fprintf(&b, "**Authors:** %s\n\n", strings.Join(p.Authors, ", "))
			}
			if !p.Published.IsZero() {
				fmt.Fprintf(&b, "**Published:** %s\n\n", p.Published.Format("2006-01-02 15:04 MST"))
			}
			if p.JournalRef != "" {
				fmt.Fprintf(&b, "**Journal reference:** %s\n\n", p.JournalRef)
			}
			if rec.Reason != "" {
				fmt.Fprintf(&b, "**Why:** %s\n\n", rec.Reason)
			}
			if p.Abstract != "" {
				fmt.Fprintf(&b, "%s\n\n", p.Abstract)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// titleCase upper-cases the first rune of each word for section headings.
// Category labels arrive lower-cased from the validation stage.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
