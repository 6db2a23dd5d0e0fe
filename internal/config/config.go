// Package config loads and validates quiz service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Wiki      WikiConfig      `mapstructure:"wiki"`
	Stability StabilityConfig `mapstructure:"stability"`
	Refill    RefillConfig    `mapstructure:"refill"`
	Hint      HintConfig      `mapstructure:"hint"`
	DB        DBConfig        `mapstructure:"db"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	QuizWaitTimeout time.Duration `mapstructure:"quiz_wait_timeout"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// WikiConfig points the client at an encyclopedia instance and bounds its traffic.
type WikiConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	PageURL        string        `mapstructure:"page_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ThumbSize      int           `mapstructure:"thumb_size"`
	ImageListLimit int           `mapstructure:"image_list_limit"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	MaxRetries     int           `mapstructure:"max_retries"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CacheDir       string        `mapstructure:"cache_dir"`
}

// StabilityConfig tunes the image probe protocol.
type StabilityConfig struct {
	Attempts     int           `mapstructure:"attempts"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	Pause        time.Duration `mapstructure:"pause"`
}

// RefillConfig governs the cache size and both refill phases.
type RefillConfig struct {
	Capacity            int           `mapstructure:"capacity"`
	CuratedNames        []string      `mapstructure:"curated_names"`
	CuratedSample       int           `mapstructure:"curated_sample"`
	CuratedMinExtract   int           `mapstructure:"curated_min_extract"`
	DiscoveryAttempts   int           `mapstructure:"discovery_attempts"`
	DiscoveryCandidates int           `mapstructure:"discovery_candidates"`
	DiscoveryMinExtract int           `mapstructure:"discovery_min_extract"`
	DiscoveryPageLimit  int           `mapstructure:"discovery_page_limit"`
	CategoryFormat      string        `mapstructure:"category_format"`
	YearMin             int           `mapstructure:"year_min"`
	YearMax             int           `mapstructure:"year_max"`
	CriticalLow         int           `mapstructure:"critical_low"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	DescriptionMaxRunes int           `mapstructure:"description_max_runes"`
	WarmOnStart         bool          `mapstructure:"warm_on_start"`
}

// HintConfig controls redaction output.
type HintConfig struct {
	MaxRunes int    `mapstructure:"max_runes"`
	Marker   string `mapstructure:"marker"`
}

// DBConfig controls the optional Postgres entry archive.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.quiz_wait_timeout", "120s")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")

	v.SetDefault("wiki.api_url", "https://ko.wikipedia.org/w/api.php")
	v.SetDefault("wiki.page_url", "https://ko.wikipedia.org/wiki/")
	v.SetDefault("wiki.user_agent", "portrait-quiz/0.1 (+https://github.com/JakeFAU/portrait-quiz)")
	v.SetDefault("wiki.request_timeout", "10s")
	v.SetDefault("wiki.thumb_size", 600)
	v.SetDefault("wiki.image_list_limit", 50)
	v.SetDefault("wiki.rate_limit_rps", 5)
	v.SetDefault("wiki.rate_limit_burst", 2)
	v.SetDefault("wiki.max_retries", 2)
	v.SetDefault("wiki.cache_ttl", "10m")
	v.SetDefault("wiki.cache_dir", "")

	v.SetDefault("stability.attempts", 3)
	v.SetDefault("stability.probe_timeout", "3s")
	v.SetDefault("stability.pause", "250ms")

	v.SetDefault("refill.capacity", 20)
	v.SetDefault("refill.curated_names", DefaultCuratedNames)
	v.SetDefault("refill.curated_sample", 5)
	v.SetDefault("refill.curated_min_extract", 30)
	v.SetDefault("refill.discovery_attempts", 3)
	v.SetDefault("refill.discovery_candidates", 10)
	v.SetDefault("refill.discovery_min_extract", 300)
	v.SetDefault("refill.discovery_page_limit", 50)
	v.SetDefault("refill.category_format", "분류:%d년 태어남")
	v.SetDefault("refill.year_min", 500)
	v.SetDefault("refill.year_max", 1940)
	v.SetDefault("refill.critical_low", 5)
	v.SetDefault("refill.retry_delay", "30s")
	v.SetDefault("refill.description_max_runes", 300)
	v.SetDefault("refill.warm_on_start", true)

	v.SetDefault("hint.max_runes", 120)
	v.SetDefault("hint.marker", "○○")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "quiz_entries")
	v.SetDefault("db.max_conns", 4)
}

// DefaultCuratedNames is the famous-person list sampled by the curated refill phase.
var DefaultCuratedNames = []string{
	"세종", "이순신", "볼프강 아마데우스 모차르트", "루트비히 판 베토벤",
	"파블로 피카소", "마하트마 간디", "빈센트 반 고흐", "알베르트 아인슈타인",
	"레오나르도 다 빈치", "나폴레옹 보나파르트", "에이브러햄 링컨", "마리 퀴리",
	"아이작 뉴턴", "윈스턴 처칠", "찰스 다윈", "안중근", "유관순", "김구",
	"정약용", "장영실", "윌리엄 셰익스피어", "토머스 에디슨", "니콜라 테슬라",
	"마틴 루서 킹 주니어", "넬슨 만델라",
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port must be > 0")
	}
	if c.Wiki.APIURL == "" || c.Wiki.PageURL == "" {
		return errors.New("wiki.api_url and wiki.page_url are required")
	}
	if c.Wiki.RequestTimeout <= 0 {
		return errors.New("wiki.request_timeout must be > 0")
	}
	if c.Wiki.ImageListLimit <= 0 || c.Wiki.ImageListLimit > 200 {
		return errors.New("wiki.image_list_limit must be within 1..200")
	}
	if c.Stability.Attempts <= 0 {
		return errors.New("stability.attempts must be > 0")
	}
	if c.Stability.ProbeTimeout <= 0 {
		return errors.New("stability.probe_timeout must be > 0")
	}
	if c.Refill.Capacity <= 0 {
		return errors.New("refill.capacity must be > 0")
	}
	if c.Refill.YearMin > c.Refill.YearMax {
		return fmt.Errorf("refill.year_min (%d) must be <= refill.year_max (%d)", c.Refill.YearMin, c.Refill.YearMax)
	}
	if c.Refill.CriticalLow > c.Refill.Capacity {
		return errors.New("refill.critical_low must be <= refill.capacity")
	}
	if !strings.Contains(c.Refill.CategoryFormat, "%d") {
		return errors.New("refill.category_format must contain a %d year verb")
	}
	if c.Hint.MaxRunes <= 0 || c.Hint.Marker == "" {
		return errors.New("hint.max_runes must be > 0 and hint.marker must be set")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
