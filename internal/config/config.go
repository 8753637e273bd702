// Package config loads the engine's layered TOML configuration: CLI >
// env (DRIFT_*) > project file > user file > built-in defaults, per spec §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	drifterrors "github.com/coderift/drift/internal/errors"
)

// Config is the root configuration object. Field groups mirror the TOML
// section names in spec §6.
type Config struct {
	Scan     ScanConfig     `toml:"scan"`
	Analysis AnalysisConfig `toml:"analysis"`
	Storage  StorageConfig  `toml:"storage"`
	Learning LearningConfig `toml:"learning"`
	Backup   BackupConfig   `toml:"backup"`
}

type ScanConfig struct {
	Root             string   `toml:"root"`
	MaxFileSizeBytes int64    `toml:"max_file_size_bytes"`
	FollowSymlinks   bool     `toml:"follow_symlinks"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	Include          []string `toml:"include"`
	Exclude          []string `toml:"exclude"`
	ParallelWorkers  int      `toml:"parallel_workers"` // 0 = auto (NumCPU)
	WatchMode        bool     `toml:"watch_mode"`
}

type AnalysisConfig struct {
	PatternFile        string `toml:"pattern_file"`
	TaintRegistryFile  string `toml:"taint_registry_file"`
	FuzzyThreshold     float64 `toml:"fuzzy_threshold"`
	MaxReachabilityBFS int    `toml:"max_reachability_depth"`
	CallGraphCTEThresh int    `toml:"call_graph_cte_threshold"`
}

type StorageConfig struct {
	Path             string `toml:"path"`
	BusyTimeoutMs    int    `toml:"busy_timeout_ms"`
	MmapSizeBytes    int64  `toml:"mmap_size_bytes"`
	PageCacheBytes   int64  `toml:"page_cache_bytes"`
	ReaderPoolSize   int    `toml:"reader_pool_size"`
	IngestBatchSize  int    `toml:"ingest_batch_size"`
	IngestChannelCap int    `toml:"ingest_channel_cap"`
}

type LearningConfig struct {
	MinOccurrences       int     `toml:"min_occurrences"`
	MinFileSpread        int     `toml:"min_file_spread"`
	DominanceThreshold    float64 `toml:"dominance_threshold"`
	ContestedGap          float64 `toml:"contested_gap"`
	PromotionMinFiles     int     `toml:"promotion_min_files"`
	ExpiryDays            int     `toml:"expiry_days"`
	ReLearnChangeFraction float64 `toml:"relearn_change_fraction"`
	ReviewFile            string  `toml:"review_file"`
}

type BackupConfig struct {
	Enabled       bool   `toml:"enabled"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Defaults returns the built-in default configuration.
func Defaults() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxFileSizeBytes: 1 << 20, // 1 MiB, per §4.3
			RespectGitignore: true,
			ParallelWorkers:  0,
		},
		Analysis: AnalysisConfig{
			FuzzyThreshold:     0.85,
			MaxReachabilityBFS: 20,
			CallGraphCTEThresh: 50000,
		},
		Storage: StorageConfig{
			Path:             "drift.db",
			BusyTimeoutMs:    5000,
			MmapSizeBytes:    256 << 20,
			PageCacheBytes:   64 << 20,
			ReaderPoolSize:   4,
			IngestBatchSize:  500,
			IngestChannelCap: 1024,
		},
		Learning: LearningConfig{
			MinOccurrences:        3,
			MinFileSpread:         2,
			DominanceThreshold:    0.60,
			ContestedGap:          0.20,
			PromotionMinFiles:     5,
			ExpiryDays:            90,
			ReLearnChangeFraction: 0.10,
			ReviewFile:            ".drift.kdl",
		},
		Backup: BackupConfig{
			Enabled:       true,
			Dir:           ".drift/backups",
			RetentionDays: 30,
		},
	}
}

// Load layers configuration: defaults < user file < project file < env <
// explicit overrides. projectRoot is the directory searched for
// "drift.toml"; userConfigPath may be empty to skip the user layer.
func Load(projectRoot, userConfigPath string, envLookup func(string) (string, bool)) (*Config, error) {
	cfg := Defaults()
	cfg.Scan.Root = projectRoot

	if userConfigPath != "" {
		if err := mergeTOMLFile(cfg, userConfigPath); err != nil {
			return nil, err
		}
	}

	projectFile := filepath.Join(projectRoot, "drift.toml")
	if err := mergeTOMLFile(cfg, projectFile); err != nil {
		return nil, err
	}

	if envLookup == nil {
		envLookup = os.LookupEnv
	}
	applyEnv(cfg, envLookup)

	return cfg, nil
}

func mergeTOMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return drifterrors.NewConfigError(path, "", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return drifterrors.NewConfigError(path, string(data[:min(64, len(data))]), err)
	}
	return nil
}

// applyEnv applies DRIFT_* overrides, the highest layer below explicit CLI
// flags (which the out-of-scope CLI consumer applies on top of this).
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("DRIFT_STORAGE_PATH"); ok {
		cfg.Storage.Path = v
	}
	if v, ok := lookup("DRIFT_SCAN_MAX_FILE_SIZE_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Scan.MaxFileSizeBytes = n
		}
	}
	if v, ok := lookup("DRIFT_SCAN_ROOT"); ok {
		cfg.Scan.Root = v
	}
	if v, ok := lookup("DRIFT_LEARNING_DOMINANCE_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Learning.DominanceThreshold = f
		}
	}
}

// ParseLogLevels parses the DRIFT_LOG=module=level,module2=level2 knob
// described in spec §6 into a module->level map.
func ParseLogLevels(spec string) map[string]string {
	levels := make(map[string]string)
	if spec == "" {
		return levels
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			levels["*"] = part
			continue
		}
		levels[kv[0]] = kv[1]
	}
	return levels
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Validate checks invariants a strict TOML section requires rejecting
// unknown/invalid values for, per spec §7 Configuration errors.
func (c *Config) Validate() error {
	if c.Scan.MaxFileSizeBytes <= 0 {
		return drifterrors.NewConfigError("scan.max_file_size_bytes", fmt.Sprint(c.Scan.MaxFileSizeBytes),
			fmt.Errorf("must be positive"))
	}
	if c.Learning.ContestedGap <= 0 || c.Learning.ContestedGap >= 1 {
		return drifterrors.NewConfigError("learning.contested_gap", fmt.Sprint(c.Learning.ContestedGap),
			fmt.Errorf("must be in (0,1)"))
	}
	if c.Analysis.FuzzyThreshold < 0 || c.Analysis.FuzzyThreshold > 1 {
		return drifterrors.NewConfigError("analysis.fuzzy_threshold", fmt.Sprint(c.Analysis.FuzzyThreshold),
			fmt.Errorf("must be in [0,1]"))
	}
	return nil
}
