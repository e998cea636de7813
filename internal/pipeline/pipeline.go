// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires one digest run end to end: fetch, filter,
// recommend, render, email, record.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/recommend"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// PaperSource fetches candidate papers for a run.
type PaperSource interface {
	Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.Paper, error)
}

// IDStore persists the set of paper IDs already digested.
type IDStore interface {
	Load() (map[string]struct{}, error)
	Append(ids []string) error
}

// Notifier delivers the rendered artifacts.
type Notifier interface {
	Send(ctx context.Context, subject, body string, attachmentPaths []string) error
}

// Deps collects the collaborators for one run. RenderDigest and
// RenderBibliography default to the digest package implementations.
type Deps struct {
	Source   PaperSource
	Store    IDStore
	Backend  recommend.Backend
	Notifier Notifier

	RenderDigest       func(types.RecommendationMap, string, time.Time) (string, error)
	RenderBibliography func(types.RecommendationMap, string) (string, error)

	// Now supplies the run timestamp; defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) fillDefaults() {
	if d.RenderDigest == nil {
		d.RenderDigest = digest.WriteDigest
	}
	if d.RenderBibliography == nil {
		d.RenderBibliography = digest.WriteBibliography
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Summary holds counts and artifact paths from one run.
type Summary struct {
	Fetched          int
	Skipped          int
	New              int
	Recommended      int
	Sent             bool
	DigestPath       string
	BibliographyPath string
}

// Options tunes run behavior.
type Options struct {
	// DryRun renders artifacts but skips email delivery and does not
	// mark papers as processed.
	DryRun bool
}

// Run executes one digest run, logging progress to w.
//
// Papers already in the store are dropped before the model sees them.
// If nothing new was fetched the run exits successfully without
// rendering or sending. The store is updated only after a successful
// send, so a failed run leaves every paper eligible for the next one.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig, opts Options, w io.Writer) (Summary, error) {
	deps.fillDefaults()
	var summary Summary

	seen, err := deps.Store.Load()
	if err != nil {
		return summary, fmt.Errorf("loading processed IDs: %w", err)
	}

	papers, err := deps.Source.Fetch(ctx, cfg.Fetch)
	if err != nil {
		return summary, fmt.Errorf("fetching papers: %w", err)
	}
	summary.Fetched = len(papers)
	fmt.Fprintf(w, "fetched %d papers\n", len(papers))

	var fresh []types.Paper
	for _, p := range papers {
		if _, ok := seen[p.ID]; ok {
			fmt.Fprintf(w, "skipping already processed paper %s\n", p.ID)
			summary.Skipped++
			continue
		}
		fresh = append(fresh, p)
	}
	summary.New = len(fresh)

	if len(fresh) == 0 {
		fmt.Fprintln(w, "all fetched papers were processed in earlier runs; nothing to do")
		return summary, nil
	}

	fmt.Fprintf(w, "requesting recommendations for %d papers\n", len(fresh))
	recs, err := recommend.Recommend(ctx, deps.Backend, fresh, cfg.Recommend.ResearchInterests)
	if err != nil {
		return summary, fmt.Errorf("recommending papers: %w", err)
	}
	summary.Recommended = recs.Count()
	fmt.Fprintf(w, "model recommended %d papers in %d categories\n", recs.Count(), len(recs))

	now := deps.Now()
	digestPath, err := deps.RenderDigest(recs, cfg.Output.Dir, now)
	if err != nil {
		return summary, fmt.Errorf("rendering digest: %w", err)
	}
	summary.DigestPath = digestPath
	fmt.Fprintf(w, "wrote digest %s\n", digestPath)

	attachments := []string{digestPath}
	if bibPath, err := deps.RenderBibliography(recs, cfg.Output.Dir); err != nil {
		fmt.Fprintf(w, "warning: bibliography rendering failed, continuing without it: %v\n", err)
	} else {
		summary.BibliographyPath = bibPath
		attachments = append(attachments, bibPath)
		fmt.Fprintf(w, "wrote bibliography %s\n", bibPath)
	}

	if opts.DryRun {
		fmt.Fprintln(w, "dry run: skipping email and processed-ID update")
		return summary, nil
	}

	subject := fmt.Sprintf("Paper digest for %s", now.Format("2006-01-02"))
	body := fmt.Sprintf("Recommended papers: %d (from %d new submissions). See attachments.",
		recs.Count(), len(fresh))
	if err := deps.Notifier.Send(ctx, subject, body, attachments); err != nil {
		return summary, fmt.Errorf("sending digest: %w", err)
	}
	summary.Sent = true
	fmt.Fprintln(w, "digest sent")

	ids := make([]string, len(fresh))
	for i, p := range fresh {
		ids[i] = p.ID
	}
	if err := deps.Store.Append(ids); err != nil {
		return summary, fmt.Errorf("recording processed IDs: %w", err)
	}
	fmt.Fprintf(w, "marked %d papers as processed\n", len(ids))

	return summary, nil
}
