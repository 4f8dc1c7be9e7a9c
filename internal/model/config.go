package model

import "time"

// Config holds all casedex settings. Field tags serve both viper
// (mapstructure) and `config init` (yaml).
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// CatalogConfig points at an optional catalog file replacing the built-in one
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ScanConfig controls directory scanning
type ScanConfig struct {
	Extensions     []string      `mapstructure:"extensions" yaml:"extensions"`
	OverridesFile  string        `mapstructure:"overrides_file" yaml:"overrides_file"` // Manual tag additions, relative to the scanned root
	Workers        int           `mapstructure:"workers" yaml:"workers"`
	ReadsPerSecond float64       `mapstructure:"reads_per_second" yaml:"reads_per_second"` // Per directory; 0 disables throttling
	ReadBurst      int           `mapstructure:"read_burst" yaml:"read_burst"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

// CacheConfig controls the extraction result cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// StoreConfig controls the document store
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"` // Rotated JSON log; empty disables
	JSON  bool   `mapstructure:"json" yaml:"json"` // JSON console output
}

// OutputConfig controls artifact locations
type OutputConfig struct {
	AnalysisFile string `mapstructure:"analysis_file" yaml:"analysis_file"`
	IndexFile    string `mapstructure:"index_file" yaml:"index_file"`
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:     []string{".pdf", ".md", ".txt", ".html", ".htm"},
			OverridesFile:  "tag_overrides.yaml",
			Workers:        4,
			ReadsPerSecond: 0,
			ReadBurst:      8,
			MaxBodyBytes:   4_000_000,
			WatchDebounce:  2 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".casedex/cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    ".casedex/store",
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			AnalysisFile: "tag_analysis.json",
			IndexFile:    "search_index.json",
		},
	}
}
