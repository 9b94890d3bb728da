package dedup

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRankerScore(t *testing.T) {
	tests := []struct {
		name  string
		meta  *Metadata
		diffs int
		want  float64
	}{
		{"no metadata", nil, 3, 0},
		{"no metadata five difficulties", nil, 5, 100},
		{"votes and downloads", &Metadata{UpVotes: ptrInt(10), DownVotes: ptrInt(2), Downloads: ptrInt(400)}, 1, 36},
		{"missing downvotes count as zero", &Metadata{UpVotes: ptrInt(3)}, 1, 6},
		{"negative vote balance", &Metadata{UpVotes: ptrInt(1), DownVotes: ptrInt(6)}, 1, -10},
		{"ranked", &Metadata{Ranked: true}, 1, 500},
		{"alt ranked", &Metadata{AltRanked: true}, 1, 500},
		{"both ranked flags count once", &Metadata{Ranked: true, AltRanked: true}, 1, 500},
		{"curated", &Metadata{Curated: true}, 1, 100},
		{"verified uploader", &Metadata{Uploader: Uploader{Name: "someone", Verified: true}}, 1, 50},
		{"automapper", &Metadata{Automapper: true}, 1, -300},
		{"everything", &Metadata{
			UpVotes: ptrInt(100), DownVotes: ptrInt(10), Downloads: ptrInt(2000),
			Ranked: true, Curated: true, Automapper: true,
			Uploader: Uploader{Verified: true},
		}, 6, 180 + 100 + 500 + 100 + 50 - 300 + 100},
	}

	ranker := NewRanker(DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record("h", "Song", "Artist", tt.diffs)
			r.Metadata = tt.meta
			if got := ranker.Score(r); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankerScoreClampsNonFinite(t *testing.T) {
	ranker := NewRanker(Policy{VoteWeight: math.Inf(1)})
	r := record("h", "Song", "Artist", 1)
	r.Metadata = &Metadata{UpVotes: ptrInt(4), DownVotes: ptrInt(4)}
	if got := ranker.Score(r); got != 0 {
		t.Fatalf("NaN score should clamp to 0, got %v", got)
	}
	r.Metadata = &Metadata{UpVotes: ptrInt(5)}
	if got := ranker.Score(r); got != 0 {
		t.Fatalf("infinite score should clamp to 0, got %v", got)
	}
}

func TestRankerEstimateSize(t *testing.T) {
	ranker := NewRanker(DefaultPolicy())
	for diffs, want := range map[int]int{0: 200, 1: 250, 5: 450, 9: 650} {
		if got := ranker.EstimateSize(record("h", "Song", "Artist", diffs)); got != want {
			t.Errorf("EstimateSize(%d difficulties) = %d, want %d", diffs, got, want)
		}
	}
}

func TestRankerRankSortsAndRecommends(t *testing.T) {
	low := record("low", "Song", "A", 1)
	high := record("high", "Song", "A", 2)
	high.Metadata = &Metadata{Curated: true}
	mid := record("mid", "Song", "A", 3)
	mid.Metadata = &Metadata{UpVotes: ptrInt(10)}

	clusters := []Cluster{{
		Title:      "Song",
		Author:     "A",
		Similarity: SimilarityHigh,
		Members:    []ScoredRecord{{Record: low}, {Record: mid}, {Record: high, Recommended: true}},
	}}

	ranked := NewRanker(DefaultPolicy()).Rank(clusters)
	c := ranked[0]
	if diff := cmp.Diff([]string{"high", "mid", "low"}, hashes(c)); diff != "" {
		t.Fatalf("member order mismatch (-want +got):\n%s", diff)
	}
	for i, m := range c.Members {
		if want := i == 0; m.Recommended != want {
			t.Fatalf("member %d recommended = %v, want %v", i, m.Recommended, want)
		}
	}
	if c.TotalSize != 250+300+350 {
		t.Fatalf("total size = %d, want %d", c.TotalSize, 250+300+350)
	}
	if &ranked[0] != &clusters[0] {
		t.Fatal("Rank should update clusters in place")
	}
}

func TestRankerRankTiesKeepInputOrder(t *testing.T) {
	clusters := []Cluster{{
		Similarity: SimilarityExact,
		Members: []ScoredRecord{
			{Record: record("first", "Foo", "X", 3)},
			{Record: record("second", "Foo", "X", 3)},
			{Record: record("third", "Foo", "X", 3)},
		},
	}}

	c := NewRanker(DefaultPolicy()).Rank(clusters)[0]
	if diff := cmp.Diff([]string{"first", "second", "third"}, hashes(c)); diff != "" {
		t.Fatalf("tied members should keep input order (-want +got):\n%s", diff)
	}
	if !c.Members[0].Recommended {
		t.Fatal("first occurrence should win ties")
	}
}
