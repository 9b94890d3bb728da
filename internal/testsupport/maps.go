package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MapSpec describes a fixture map folder in the classic Info.dat layout.
type MapSpec struct {
	Folder       string
	Title        string
	SubTitle     string
	Author       string
	Mapper       string
	BPM          float64
	Difficulties []string
	// Notes seeds difficulty file contents so distinct maps hash differently.
	Notes string
}

// WriteMap creates a map folder below root and returns its path.
func WriteMap(t testing.TB, root string, spec MapSpec) string {
	t.Helper()

	folder := spec.Folder
	if folder == "" {
		folder = strings.ReplaceAll(spec.Title, " ", "_")
	}
	dir := filepath.Join(root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}

	type beatmap struct {
		Difficulty string `json:"_difficulty"`
		Filename   string `json:"_beatmapFilename"`
	}
	beatmaps := make([]beatmap, 0, len(spec.Difficulties))
	for _, diff := range spec.Difficulties {
		name := diff + "Standard.dat"
		beatmaps = append(beatmaps, beatmap{Difficulty: diff, Filename: name})
		content := `{"_notes":"` + spec.Notes + diff + `"}`
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	info := map[string]any{
		"_version":         "2.0.0",
		"_songName":        spec.Title,
		"_songSubName":     spec.SubTitle,
		"_songAuthorName":  spec.Author,
		"_levelAuthorName": spec.Mapper,
		"_beatsPerMinute":  spec.BPM,
		"_difficultyBeatmapSets": []map[string]any{{
			"_beatmapCharacteristicName": "Standard",
			"_difficultyBeatmaps":        beatmaps,
		}},
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		t.Fatalf("marshal info.dat: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Info.dat"), data, 0o644); err != nil {
		t.Fatalf("write info.dat: %v", err)
	}
	return dir
}
