package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mapcull/internal/dedup"
)

var infoFileNames = []string{"Info.dat", "info.dat"}

// mapInfo is the format-independent view of an Info.dat file.
type mapInfo struct {
	Title        string
	SubTitle     string
	Author       string
	Mapper       string
	BPM          float64
	Duration     float64
	Difficulties []dedup.Difficulty
	// Files lists referenced beatmap files in declaration order, without duplicates.
	Files []string
}

type infoV2 struct {
	SongName       string  `json:"_songName"`
	SongSubName    string  `json:"_songSubName"`
	SongAuthorName string  `json:"_songAuthorName"`
	LevelAuthor    string  `json:"_levelAuthorName"`
	BeatsPerMinute float64 `json:"_beatsPerMinute"`
	BeatmapSets    []struct {
		Characteristic string `json:"_beatmapCharacteristicName"`
		Beatmaps       []struct {
			Difficulty string `json:"_difficulty"`
			Filename   string `json:"_beatmapFilename"`
		} `json:"_difficultyBeatmaps"`
	} `json:"_difficultyBeatmapSets"`
}

type infoV4 struct {
	Version string `json:"version"`
	Song    struct {
		Title    string `json:"title"`
		SubTitle string `json:"subTitle"`
		Author   string `json:"author"`
	} `json:"song"`
	Audio struct {
		BPM      float64 `json:"bpm"`
		Duration float64 `json:"songDuration"`
	} `json:"audio"`
	Beatmaps []struct {
		Difficulty string `json:"difficulty"`
		DataFile   string `json:"beatmapDataFilename"`
		Lightshow  string `json:"lightshowDataFilename"`
		Authors    struct {
			Mappers []string `json:"mappers"`
		} `json:"beatmapAuthors"`
	} `json:"difficultyBeatmaps"`
}

var errNoSongName = errors.New("info.dat has no song name")

func parseInfo(data []byte) (mapInfo, error) {
	var probe struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return mapInfo{}, fmt.Errorf("decode info.dat: %w", err)
	}
	var (
		info mapInfo
		err  error
	)
	if strings.HasPrefix(strings.TrimSpace(probe.Version), "4") {
		info, err = parseInfoV4(data)
	} else {
		info, err = parseInfoV2(data)
	}
	if err != nil {
		return mapInfo{}, err
	}
	if strings.TrimSpace(info.Title) == "" {
		return mapInfo{}, errNoSongName
	}
	return info, nil
}

func parseInfoV2(data []byte) (mapInfo, error) {
	var raw infoV2
	if err := json.Unmarshal(data, &raw); err != nil {
		return mapInfo{}, fmt.Errorf("decode info.dat: %w", err)
	}
	info := mapInfo{
		Title:    raw.SongName,
		SubTitle: raw.SongSubName,
		Author:   raw.SongAuthorName,
		Mapper:   raw.LevelAuthor,
		BPM:      raw.BeatsPerMinute,
	}
	files := newFileList()
	for _, set := range raw.BeatmapSets {
		for _, bm := range set.Beatmaps {
			if diff, ok := dedup.ParseDifficulty(bm.Difficulty); ok {
				info.Difficulties = append(info.Difficulties, diff)
			}
			files.add(bm.Filename)
		}
	}
	info.Files = files.names
	return info, nil
}

func parseInfoV4(data []byte) (mapInfo, error) {
	var raw infoV4
	if err := json.Unmarshal(data, &raw); err != nil {
		return mapInfo{}, fmt.Errorf("decode info.dat: %w", err)
	}
	info := mapInfo{
		Title:    raw.Song.Title,
		SubTitle: raw.Song.SubTitle,
		Author:   raw.Song.Author,
		BPM:      raw.Audio.BPM,
		Duration: raw.Audio.Duration,
	}
	files := newFileList()
	var mappers []string
	seenMapper := map[string]struct{}{}
	for _, bm := range raw.Beatmaps {
		if diff, ok := dedup.ParseDifficulty(bm.Difficulty); ok {
			info.Difficulties = append(info.Difficulties, diff)
		}
		files.add(bm.DataFile)
		files.add(bm.Lightshow)
		for _, m := range bm.Authors.Mappers {
			m = strings.TrimSpace(m)
			if _, ok := seenMapper[m]; m == "" || ok {
				continue
			}
			seenMapper[m] = struct{}{}
			mappers = append(mappers, m)
		}
	}
	info.Mapper = strings.Join(mappers, ", ")
	info.Files = files.names
	return info, nil
}

type fileList struct {
	names []string
	seen  map[string]struct{}
}

func newFileList() *fileList {
	return &fileList{seen: map[string]struct{}{}}
}

func (l *fileList) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if _, ok := l.seen[name]; ok {
		return
	}
	l.seen[name] = struct{}{}
	l.names = append(l.names, name)
}
