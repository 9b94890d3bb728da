package library

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mapcull/internal/dedup"
)

func TestParseInfoV2(t *testing.T) {
	data := []byte(`{
		"_version": "2.1.0",
		"_songName": "Ghost",
		"_songSubName": "feat. Someone",
		"_songAuthorName": "Camellia",
		"_levelAuthorName": "Mapper",
		"_beatsPerMinute": 180,
		"_difficultyBeatmapSets": [
			{"_beatmapCharacteristicName": "Standard", "_difficultyBeatmaps": [
				{"_difficulty": "Expert", "_beatmapFilename": "ExpertStandard.dat"},
				{"_difficulty": "ExpertPlus", "_beatmapFilename": "ExpertPlusStandard.dat"}
			]},
			{"_beatmapCharacteristicName": "OneSaber", "_difficultyBeatmaps": [
				{"_difficulty": "Expert", "_beatmapFilename": "ExpertOneSaber.dat"},
				{"_difficulty": "Impossible", "_beatmapFilename": "ExpertStandard.dat"}
			]}
		]
	}`)

	got, err := parseInfo(data)
	if err != nil {
		t.Fatalf("parseInfo returned error: %v", err)
	}
	want := mapInfo{
		Title:    "Ghost",
		SubTitle: "feat. Someone",
		Author:   "Camellia",
		Mapper:   "Mapper",
		BPM:      180,
		Difficulties: []dedup.Difficulty{
			dedup.DifficultyExpert, dedup.DifficultyExpertPlus, dedup.DifficultyExpert,
		},
		Files: []string{"ExpertStandard.dat", "ExpertPlusStandard.dat", "ExpertOneSaber.dat"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parseInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInfoV4(t *testing.T) {
	data := []byte(`{
		"version": "4.0.1",
		"song": {"title": "Night", "subTitle": "", "author": "Artist"},
		"audio": {"bpm": 140, "songDuration": 182.5},
		"difficultyBeatmaps": [
			{"difficulty": "Hard", "beatmapDataFilename": "Hard.dat", "lightshowDataFilename": "Lights.dat",
			 "beatmapAuthors": {"mappers": ["one", "two"]}},
			{"difficulty": "Expert", "beatmapDataFilename": "Expert.dat", "lightshowDataFilename": "Lights.dat",
			 "beatmapAuthors": {"mappers": ["two"]}}
		]
	}`)

	got, err := parseInfo(data)
	if err != nil {
		t.Fatalf("parseInfo returned error: %v", err)
	}
	want := mapInfo{
		Title:        "Night",
		Author:       "Artist",
		Mapper:       "one, two",
		BPM:          140,
		Duration:     182.5,
		Difficulties: []dedup.Difficulty{dedup.DifficultyHard, dedup.DifficultyExpert},
		Files:        []string{"Hard.dat", "Lights.dat", "Expert.dat"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parseInfo mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInfoErrors(t *testing.T) {
	if _, err := parseInfo([]byte(`{"_songName": "  "}`)); !errors.Is(err, errNoSongName) {
		t.Fatalf("expected errNoSongName, got %v", err)
	}
	if _, err := parseInfo([]byte(`[`)); err == nil {
		t.Fatal("expected decode error")
	}
}
