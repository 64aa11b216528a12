// Package chart draws the per-file token report of an export as an ASCII bar
// chart. Terminal width and output are injected, so layout is testable.
package chart

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hayeah/aicontent/internal/metrics"
	"github.com/hayeah/aicontent/internal/pathindex"
)

// Options controls layout and I/O behaviour.
type Options struct {
	BarWidth     int        // 0 = auto (35% of term, at most 30)
	FillRune     rune       // default '█'
	ThresholdPct float64    // children under this share of the total fold into dir/**
	TermWidth    func() int // must return columns
	Writer       io.Writer
}

// DefaultOptions folds anything under 1% of the total.
func DefaultOptions(termWidth func() int, w io.Writer) Options {
	return Options{
		FillRune:     '█',
		ThresholdPct: 1,
		TermWidth:    termWidth,
		Writer:       w,
	}
}

// Print writes the chart for entries.
func Print(entries []metrics.Entry, opt Options) error {
	total := 0
	for _, e := range entries {
		total += e.Tokens
	}
	buckets := foldSmall(entries, total, opt.ThresholdPct)
	for _, ln := range layout(buckets, total, len(entries), opt) {
		if _, err := fmt.Fprintln(opt.Writer, ln); err != nil {
			return err
		}
	}
	return nil
}

type bucket struct {
	Label  string
	Tokens int
}

// foldSmall rolls file tokens up into their directories, then walks from the
// root: a child at or above the threshold is expanded (directories) or
// listed (files); the rest of a directory's children share one dir/** bucket.
func foldSmall(entries []metrics.Entry, total int, thresholdPct float64) []bucket {
	tokens := map[pathindex.Path]int{}
	children := map[pathindex.Path][]pathindex.Path{}
	isFile := map[pathindex.Path]bool{}
	linked := map[pathindex.Path]bool{}

	for _, e := range entries {
		isFile[e.Path] = true
		for c := e.Path; !c.IsRoot(); c = c.Parent() {
			tokens[c] += e.Tokens
			if !linked[c] {
				linked[c] = true
				children[c.Parent()] = append(children[c.Parent()], c)
			}
		}
		tokens[""] += e.Tokens
	}

	thresh := float64(total) * thresholdPct / 100
	var out []bucket
	stack := []pathindex.Path{""}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		small := 0
		for _, c := range children[dir] {
			switch {
			case float64(tokens[c]) < thresh:
				small += tokens[c]
			case isFile[c]:
				out = append(out, bucket{Label: string(c), Tokens: tokens[c]})
			default:
				stack = append(stack, c)
			}
		}
		if small > 0 {
			out = append(out, bucket{Label: string(dir.Join("**")), Tokens: small})
		}
	}
	return out
}

func layout(buckets []bucket, total, fileCount int, opt Options) []string {
	if len(buckets) == 0 || total == 0 {
		return []string{"No tokens recorded"}
	}
	const pctW, tokensW, gapW = 6, 6, 2

	slices.SortStableFunc(buckets, func(a, b bucket) int {
		if a.Tokens != b.Tokens {
			return a.Tokens - b.Tokens
		}
		return strings.Compare(a.Label, b.Label)
	})

	barW := opt.BarWidth
	if barW <= 0 {
		barW = min(int(float64(opt.TermWidth())*0.35), 30)
	}
	keyW := max(opt.TermWidth()-(barW+pctW+tokensW+gapW*3), 8)
	fill := opt.FillRune
	if fill == 0 {
		fill = '█'
	}

	maxTokens := buckets[len(buckets)-1].Tokens
	var lines []string
	for _, b := range buckets {
		barLen := int(float64(b.Tokens)/float64(maxTokens)*float64(barW) + 0.5)
		if barLen == 0 && b.Tokens > 0 {
			barLen = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s  %5.1f%%  %*d  %-*s",
			barW, strings.Repeat(string(fill), barLen), pct(b.Tokens, total),
			tokensW, b.Tokens, keyW, trimPrefix(b.Label, keyW)))
	}

	lines = append(lines, fmt.Sprintf("%-*s  %5.1f%%  %*d  %-*s",
		barW, strings.Repeat("─", barW), 100.0, tokensW, total, keyW, "TOTAL"))
	lines = append(lines, fmt.Sprintf("\nSummary: %d files, %d tokens", fileCount, total))
	return lines
}

// trimPrefix keeps the suffix of s, marking the cut with "…".
func trimPrefix(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max+1:]
}

func pct(part, total int) float64 { return float64(part) * 100 / float64(total) }
