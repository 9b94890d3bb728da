package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mapcull/internal/dedup"
	"mapcull/internal/fileutil"
	"mapcull/internal/library"
	"mapcull/internal/testsupport"
)

type staticMetadata map[string]dedup.Metadata

func (s staticMetadata) Lookup(hash string) (dedup.Metadata, bool) {
	m, ok := s[hash]
	return m, ok
}

func ptrInt(v int) *int { return &v }

func TestScanReadsMapsInFolderOrder(t *testing.T) {
	root := t.TempDir()
	second := testsupport.WriteMap(t, root, testsupport.MapSpec{
		Folder: "b-second", Title: "Second Song", Author: "Artist B", Mapper: "mapper2",
		BPM: 174, Difficulties: []string{"Hard", "Expert"},
	})
	first := testsupport.WriteMap(t, root, testsupport.MapSpec{
		Folder: "a-first", Title: "First Song", Author: "Artist A", Mapper: "mapper1",
		BPM: 128, Difficulties: []string{"Easy", "Normal", "Hard", "Expert", "ExpertPlus"},
	})

	records, err := library.NewScanner(library.WithWorkers(2)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	got := records[0]
	if got.Path != first || got.Title != "First Song" || got.Author != "Artist A" || got.Mapper != "mapper1" {
		t.Fatalf("unexpected first record: %+v", got)
	}
	if got.BPM == nil || *got.BPM != 128 {
		t.Fatalf("unexpected bpm: %v", got.BPM)
	}
	wantDiffs := []dedup.Difficulty{
		dedup.DifficultyEasy, dedup.DifficultyNormal, dedup.DifficultyHard,
		dedup.DifficultyExpert, dedup.DifficultyExpertPlus,
	}
	if diff := cmp.Diff(wantDiffs, got.Difficulties); diff != "" {
		t.Fatalf("difficulties mismatch (-want +got):\n%s", diff)
	}
	if got.Metadata != nil {
		t.Fatalf("expected no metadata without a cache, got %+v", got.Metadata)
	}
	if records[1].Path != second {
		t.Fatalf("expected second record from %s, got %s", second, records[1].Path)
	}

	wantHash, err := fileutil.HashFiles(
		filepath.Join(second, "Info.dat"),
		filepath.Join(second, "HardStandard.dat"),
		filepath.Join(second, "ExpertStandard.dat"),
	)
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}
	if records[1].Hash != wantHash {
		t.Fatalf("hash = %s, want %s", records[1].Hash, wantHash)
	}
}

func TestScanGivesIdenticalCopiesTheSameHash(t *testing.T) {
	root := t.TempDir()
	spec := testsupport.MapSpec{Title: "Copy", Author: "Someone", BPM: 120, Difficulties: []string{"Expert"}}
	spec.Folder = "copy-1"
	testsupport.WriteMap(t, root, spec)
	spec.Folder = "copy-2"
	testsupport.WriteMap(t, root, spec)
	spec.Folder = "other"
	spec.Notes = "different chart"
	testsupport.WriteMap(t, root, spec)

	records, err := library.NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Hash != records[1].Hash {
		t.Fatalf("expected identical copies to share a hash: %s vs %s", records[0].Hash, records[1].Hash)
	}
	if records[0].Hash == records[2].Hash {
		t.Fatal("expected a different chart to hash differently")
	}
	if err := dedup.ValidateBatch(records, true); err != nil {
		t.Fatalf("scanned hashes should pass strict validation: %v", err)
	}
}

func TestScanSkipsBrokenAndForeignFolders(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteMap(t, root, testsupport.MapSpec{Folder: "good", Title: "Good", Author: "A", Difficulties: []string{"Hard"}})

	if err := os.MkdirAll(filepath.Join(root, "no-info"), 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(root, "no-info", "song.egg"), 16)

	if err := os.MkdirAll(filepath.Join(root, "corrupt"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "corrupt", "Info.dat"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	missing := testsupport.WriteMap(t, root, testsupport.MapSpec{Folder: "missing-diff", Title: "Gone", Author: "B", Difficulties: []string{"Expert"}})
	if err := os.Remove(filepath.Join(missing, "ExpertStandard.dat")); err != nil {
		t.Fatal(err)
	}

	testsupport.WriteFile(t, filepath.Join(root, "loose-file.txt"), 4)

	records, err := library.NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Good" {
		t.Fatalf("expected only the good map, got %+v", records)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := library.NewScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing library root")
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteMap(t, root, testsupport.MapSpec{Title: "Any", Author: "A"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := library.NewScanner().Scan(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanOverlaysCachedMetadata(t *testing.T) {
	root := t.TempDir()
	dir := testsupport.WriteMap(t, root, testsupport.MapSpec{Title: "Cached", Author: "A", Difficulties: []string{"Hard"}})
	rec, err := library.ReadMap(dir)
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}

	source := staticMetadata{rec.Hash: {UpVotes: ptrInt(40), Ranked: true}}
	records, err := library.NewScanner(library.WithMetadata(source)).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(records) != 1 || records[0].Metadata == nil {
		t.Fatalf("expected metadata overlay, got %+v", records)
	}
	if !records[0].Metadata.Ranked || *records[0].Metadata.UpVotes != 40 {
		t.Fatalf("unexpected metadata: %+v", records[0].Metadata)
	}
}

func TestApplyMetadataKeepsExistingSignals(t *testing.T) {
	duration := 201.5
	records := []dedup.Record{
		{Hash: "a", Metadata: &dedup.Metadata{Curated: true}},
		{Hash: "b", Metadata: &dedup.Metadata{Duration: &duration}},
		{Hash: "c"},
		{Hash: "unknown"},
	}
	source := staticMetadata{
		"a": {Ranked: true},
		"b": {Downloads: ptrInt(1000)},
		"c": {Curated: true},
	}

	if changed := library.ApplyMetadata(records, source); changed != 2 {
		t.Fatalf("expected 2 records changed, got %d", changed)
	}
	if records[0].Metadata.Ranked {
		t.Fatal("existing metadata should not be replaced")
	}
	if records[1].Metadata.Duration == nil || *records[1].Metadata.Duration != duration {
		t.Fatal("expected map duration to survive overlay")
	}
	if records[1].Metadata.Downloads == nil || *records[1].Metadata.Downloads != 1000 {
		t.Fatal("expected cached downloads on duration-only record")
	}
	if records[2].Metadata == nil || !records[2].Metadata.Curated {
		t.Fatal("expected cached metadata on bare record")
	}
	if records[3].Metadata != nil {
		t.Fatal("expected unknown hash to stay bare")
	}
	if library.ApplyMetadata(records, nil) != 0 {
		t.Fatal("nil source should change nothing")
	}
}
