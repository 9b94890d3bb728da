package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mapcull/internal/dedup"
	"mapcull/internal/library"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	bpm := 128.0
	duration := 200.0
	want := []dedup.Record{
		{
			Hash:         "aaa",
			Title:        "Song",
			Author:       "Artist",
			BPM:          &bpm,
			Difficulties: []dedup.Difficulty{dedup.DifficultyHard, dedup.DifficultyExpert},
			Metadata: &dedup.Metadata{
				Duration: &duration,
				UpVotes:  ptrInt(12),
				Ranked:   true,
				Uploader: dedup.Uploader{Name: "up", Verified: true},
			},
		},
		{Hash: "bbb", Title: "Other", Author: "Artist"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json array",
			file: "batch.json",
			content: `[
				{"hash": "aaa", "title": "Song", "author": "Artist", "bpm": 128, "difficulties": ["Hard", "Expert"],
				 "metadata": {"duration": 200, "up_votes": 12, "ranked": true, "uploader": {"name": "up", "verified": true}}},
				{"hash": "bbb", "title": "Other", "author": "Artist"}
			]`,
		},
		{
			name: "json object",
			file: "batch.JSON",
			content: `{"records": [
				{"hash": "aaa", "title": "Song", "author": "Artist", "bpm": 128, "difficulties": ["Hard", "Expert"],
				 "metadata": {"duration": 200, "up_votes": 12, "ranked": true, "uploader": {"name": "up", "verified": true}}},
				{"hash": "bbb", "title": "Other", "author": "Artist"}
			]}`,
		},
		{
			name: "yaml list",
			file: "batch.yaml",
			content: `
- hash: aaa
  title: Song
  author: Artist
  bpm: 128
  difficulties: [Hard, Expert]
  metadata:
    duration: 200
    up_votes: 12
    ranked: true
    uploader: {name: up, verified: true}
- hash: bbb
  title: Other
  author: Artist
`,
		},
		{
			name: "yaml object",
			file: "batch.yml",
			content: `
records:
  - hash: aaa
    title: Song
    author: Artist
    bpm: 128
    difficulties: [Hard, Expert]
    metadata:
      duration: 200
      up_votes: 12
      ranked: true
      uploader: {name: up, verified: true}
  - hash: bbb
    title: Other
    author: Artist
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := library.LoadManifest(writeManifest(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadManifest returned error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadManifestErrors(t *testing.T) {
	if _, err := library.LoadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if _, err := library.LoadManifest(writeManifest(t, "bad.json", `{"records": [`)); err == nil {
		t.Fatal("expected error for malformed json")
	}
	if _, err := library.LoadManifest(writeManifest(t, "bad.yaml", "records: [\n")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadManifestEmptyYAML(t *testing.T) {
	got, err := library.LoadManifest(writeManifest(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}
