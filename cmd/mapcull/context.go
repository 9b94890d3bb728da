package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mapcull/internal/config"
	"mapcull/internal/dedup"
	"mapcull/internal/history"
	"mapcull/internal/logging"
	"mapcull/internal/metacache"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		})
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func (c *commandContext) metadataCache() (*metacache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return metacache.NewCache(cfg.Library.MetadataCachePath, logger), nil
}

// analysisPolicy projects the matching and scoring sections onto the dedup policy.
func analysisPolicy(cfg *config.Config) dedup.Policy {
	m, s := cfg.Matching, cfg.Scoring
	return dedup.Policy{
		HighThreshold:            m.HighThreshold,
		MediumThreshold:          m.MediumThreshold,
		LowThreshold:             m.LowThreshold,
		TempoToleranceBPM:        m.TempoToleranceBPM,
		TempoToleranceRatio:      m.TempoToleranceRatio,
		DurationToleranceSeconds: m.DurationToleranceSeconds,
		DurationToleranceRatio:   m.DurationToleranceRatio,
		VoteWeight:               s.VoteWeight,
		DownloadDivisor:          s.DownloadDivisor,
		RankedBonus:              s.RankedBonus,
		CuratedBonus:             s.CuratedBonus,
		VerifiedBonus:            s.VerifiedBonus,
		AutomapperPenalty:        s.AutomapperPenalty,
		DifficultyBonus:          s.DifficultyBonus,
		DifficultyBonusMin:       s.DifficultyBonusMin,
		SizeBase:                 s.SizeBase,
		SizePerDifficulty:        s.SizePerDifficulty,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
