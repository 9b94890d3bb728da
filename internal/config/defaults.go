package config

const (
	defaultConfigPath  = "~/.config/mapcull/config.toml"
	defaultLibraryDir  = "~/BeatSaber/Beat Saber_Data/CustomLevels"
	defaultLogDirName  = "logs"
	defaultTrashDir    = "~/.local/share/mapcull/trash"
	defaultScanWorkers = 4
	defaultPruneMode   = PruneModeTrash
	defaultLockTimeout = 10
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultRetention   = 30
	defaultTrashRetain = 30

	// PruneModeTrash moves redundant maps into the trash directory.
	PruneModeTrash = "trash"
	// PruneModeDelete removes redundant maps permanently.
	PruneModeDelete = "delete"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir(),
			TrashDir:   defaultTrashDir,
		},
		Matching: Matching{
			HighThreshold:            0.9,
			MediumThreshold:          0.8,
			LowThreshold:             0.7,
			TempoToleranceBPM:        10,
			TempoToleranceRatio:      0.10,
			DurationToleranceSeconds: 15,
			DurationToleranceRatio:   0.15,
		},
		Scoring: Scoring{
			VoteWeight:         2,
			DownloadDivisor:    20,
			RankedBonus:        500,
			CuratedBonus:       100,
			VerifiedBonus:      50,
			AutomapperPenalty:  300,
			DifficultyBonus:    100,
			DifficultyBonusMin: 5,
			SizeBase:           200,
			SizePerDifficulty:  50,
		},
		Library: Library{
			ScanWorkers: defaultScanWorkers,
		},
		Prune: Prune{
			Mode:               defaultPruneMode,
			LockTimeoutSeconds: defaultLockTimeout,
			TrashRetentionDays: defaultTrashRetain,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetention,
		},
	}
}
