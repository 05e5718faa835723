// Package demo finds and removes placeholder leads left behind by manual
// testing of the storefront funnel.
package demo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

const DefaultLimit = 100

var (
	DefaultTokens   = []string{"vvvv", "test", "demo", "asdf", "aaa", "bbb", "xxx", "yyy", "zzz", "abc"}
	DefaultPrefixes = []string{"test"}
)

// Store is the part of the leads repository the cleaner needs.
type Store interface {
	ListRecent(ctx context.Context, limit int, status model.PaymentStatus) ([]model.Lead, error)
	Delete(ctx context.Context, id string) error
}

// Matcher decides whether a lead name is a placeholder. Names are trimmed and
// lower-cased before comparison; tokens and prefixes are normalised the same way.
type Matcher struct {
	tokens   map[string]struct{}
	prefixes []string
}

func NewMatcher(tokens, prefixes []string) Matcher {
	m := Matcher{tokens: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		if t = fold(t); t != "" {
			m.tokens[t] = struct{}{}
		}
	}
	for _, p := range prefixes {
		if p = fold(p); p != "" {
			m.prefixes = append(m.prefixes, p)
		}
	}
	return m
}

func (m Matcher) Match(name string) bool {
	n := fold(name)
	if n == "" {
		return false
	}
	if _, ok := m.tokens[n]; ok {
		return true
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(n, p) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Options struct {
	Limit    int
	DryRun   bool
	Recorder *audit.Recorder
	Out      io.Writer
}

type Result struct {
	Scanned int
	Matched int
	Deleted int
}

// Cleaner deletes placeholder leads one document at a time.
type Cleaner struct {
	store   Store
	matcher Matcher
	limit   int
	dryRun  bool
	rec     *audit.Recorder
	out     io.Writer
}

func NewCleaner(store Store, m Matcher, opts Options) *Cleaner {
	return &Cleaner{
		store:   store,
		matcher: m,
		limit:   limitOrDefault(opts.Limit),
		dryRun:  opts.DryRun,
		rec:     opts.Recorder,
		out:     writerOrDiscard(opts.Out),
	}
}

// Run scans the most recent leads and deletes the ones whose name matches.
// A failed delete stops the run; leads deleted before it stay deleted.
func (c *Cleaner) Run(ctx context.Context) (Result, error) {
	var res Result

	leads, err := c.store.ListRecent(ctx, c.limit, "")
	if err != nil {
		return res, fmt.Errorf("read recent leads: %w", err)
	}
	res.Scanned = len(leads)

	for _, l := range leads {
		if !c.matcher.Match(l.Name) {
			continue
		}
		res.Matched++
		metrics.LeadsTotal.WithLabelValues("matched").Inc()

		if c.dryRun {
			fmt.Fprintf(c.out, "Would delete: %s | %s | %s\n", l.ID, l.Name, l.Phone)
			continue
		}

		fmt.Fprintf(c.out, "Deleting: %s | %s | %s\n", l.ID, l.Name, l.Phone)
		if err := c.store.Delete(ctx, l.ID); err != nil {
			logger.Log.Error("delete demo lead failed", zap.String("lead_id", l.ID), zap.Error(err))
			return res, fmt.Errorf("delete lead %s: %w", l.ID, err)
		}
		res.Deleted++
		metrics.LeadsTotal.WithLabelValues("deleted").Inc()
		c.rec.Record(ctx, model.ActionDeleted, l.ID, l.Name)
	}

	return res, nil
}

// Lister prints the most recent leads.
type Lister struct {
	store Store
	limit int
	out   io.Writer
}

func NewLister(store Store, limit int, out io.Writer) *Lister {
	return &Lister{store: store, limit: limitOrDefault(limit), out: writerOrDiscard(out)}
}

func (l *Lister) List(ctx context.Context) ([]model.Lead, error) {
	leads, err := l.store.ListRecent(ctx, l.limit, "")
	if err != nil {
		return nil, fmt.Errorf("read recent leads: %w", err)
	}
	for _, ld := range leads {
		fmt.Fprintf(l.out, "%s | %s | %s | %s | %s\n", ld.ID, ld.Name, ld.Phone, ld.PaymentLabel(), ld.Source)
	}
	fmt.Fprintf(l.out, "Total: %d\n", len(leads))
	return leads, nil
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
