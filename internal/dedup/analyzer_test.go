package dedup

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyzeEmptyBatch(t *testing.T) {
	result := NewAnalyzer(DefaultPolicy()).Analyze(nil)
	if len(result.Clusters) != 0 {
		t.Fatalf("expected no clusters, got %d", len(result.Clusters))
	}
	if result.TotalDuplicates != 0 || result.PotentialSpaceSaving != 0 {
		t.Fatalf("expected zero totals, got %+v", result)
	}
}

func TestAnalyzeExactAndFuzzyClusters(t *testing.T) {
	a := record("h1", "Foo", "X", 3)
	b := record("h1", "Foo", "X", 3)
	c := record("h2", "Foo (Remix)", "X", 5)
	c.Metadata = &Metadata{Ranked: true}

	result := NewAnalyzer(DefaultPolicy()).Analyze([]Record{a, b, c})
	if len(result.Clusters) != 2 {
		t.Fatalf("expected exact + fuzzy clusters, got %d", len(result.Clusters))
	}

	exact := result.Clusters[0]
	if exact.Similarity != SimilarityExact || len(exact.Members) != 2 {
		t.Fatalf("unexpected exact cluster: %+v", exact)
	}
	for _, m := range exact.Members {
		if m.Score != 0 {
			t.Fatalf("exact members should score 0, got %v", m.Score)
		}
	}

	fuzzy := result.Clusters[1]
	if fuzzy.Similarity != SimilarityHigh {
		t.Fatalf("fuzzy similarity = %q, want high", fuzzy.Similarity)
	}
	if diff := cmp.Diff([]string{"h2", "h1"}, hashes(fuzzy)); diff != "" {
		t.Fatalf("fuzzy members mismatch (-want +got):\n%s", diff)
	}
	best, ok := fuzzy.Recommended()
	if !ok || best.Record.Hash != "h2" || best.Score != 600 {
		t.Fatalf("expected ranked remix recommended with score 600, got %+v", best)
	}
	if fuzzy.Title != "Foo" {
		t.Fatalf("fuzzy cluster name should come from first input member, got %q", fuzzy.Title)
	}

	// One redundant member per cluster, each 3 difficulties: 200 + 150.
	if result.TotalDuplicates != 2 {
		t.Fatalf("total duplicates = %d, want 2", result.TotalDuplicates)
	}
	if result.PotentialSpaceSaving != 700 {
		t.Fatalf("potential space saving = %d, want 700", result.PotentialSpaceSaving)
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	records := []Record{
		record("a1", "Bad Apple", "Alstroemeria Records", 5),
		record("a2", "Bad Apple!!", "Alstroemeria Records", 2),
		record("a1", "Bad Apple", "Alstroemeria Records", 5),
		record("b1", "Centipede", "Knife Party", 4),
		record("b2", "Centipede (VIP)", "Knife Party", 1),
		record("c1", "Unique Song", "Nobody", 3),
		record("d1", "Reality Check Through The Skull", "DM DOKURO", 5),
		record("d1", "Reality Check Through The Skull", "DM DOKURO", 5),
		record("d1", "Reality Check Through The Skull", "DM DOKURO", 5),
	}
	records[1].Metadata = &Metadata{UpVotes: ptrInt(50), Downloads: ptrInt(1000)}
	records[4].Metadata = &Metadata{Curated: true}

	result := NewAnalyzer(DefaultPolicy()).Analyze(records)

	var wantDuplicates, wantSaving int
	for i, c := range result.Clusters {
		if len(c.Members) < 2 {
			t.Fatalf("cluster %d has %d members", i, len(c.Members))
		}
		recommended := 0
		for j, m := range c.Members {
			if m.Recommended {
				recommended++
				if j != 0 {
					t.Fatalf("cluster %d: recommended member at position %d", i, j)
				}
			}
			if m.Score > c.Members[0].Score {
				t.Fatalf("cluster %d: member %d outscores the recommended one", i, j)
			}
			if want := 200 + 50*len(m.Record.Difficulties); m.EstimatedSize != want {
				t.Fatalf("cluster %d member %d: size %d, want %d", i, j, m.EstimatedSize, want)
			}
			if !m.Recommended {
				wantDuplicates++
				wantSaving += m.EstimatedSize
			}
		}
		if recommended != 1 {
			t.Fatalf("cluster %d has %d recommended members", i, recommended)
		}
	}
	if result.TotalDuplicates != wantDuplicates || result.PotentialSpaceSaving != wantSaving {
		t.Fatalf("totals = (%d, %d), want (%d, %d)",
			result.TotalDuplicates, result.PotentialSpaceSaving, wantDuplicates, wantSaving)
	}

	var exactD1 *Cluster
	for i := range result.Clusters {
		c := &result.Clusters[i]
		if c.Similarity == SimilarityExact && c.Members[0].Record.Hash == "d1" {
			exactD1 = c
		}
	}
	if exactD1 == nil || len(exactD1.Members) != 3 {
		t.Fatalf("expected a 3-member exact cluster for d1, got %+v", exactD1)
	}
}

func TestAnalyzeWithMatcherAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	analyzer := NewAnalyzer(DefaultPolicy(), WithMatcher(constantMatcher(0)), WithLogger(logger))
	result := analyzer.Analyze([]Record{
		record("h1", "Same", "Song", 1),
		record("h2", "Same", "Song", 1),
	})
	if len(result.Clusters) != 0 {
		t.Fatalf("zero-similarity matcher should prevent fuzzy clusters, got %d", len(result.Clusters))
	}
	out := buf.String()
	if !strings.Contains(out, "duplicate analysis complete") || !strings.Contains(out, "component=analyzer") {
		t.Fatalf("expected analyzer summary log, got %q", out)
	}
}

func TestAnalyzeDoesNotModifyInput(t *testing.T) {
	records := []Record{
		record("h1", "Foo", "X", 1),
		record("h2", "Foo", "X", 5),
		record("h1", "Foo", "X", 1),
	}
	records[1].Metadata = &Metadata{Ranked: true}
	before := make([]Record, len(records))
	copy(before, records)

	NewAnalyzer(DefaultPolicy()).Analyze(records)
	if diff := cmp.Diff(before, records); diff != "" {
		t.Fatalf("input batch modified (-before +after):\n%s", diff)
	}
}
