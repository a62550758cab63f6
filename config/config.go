package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the control plane for one analysis run. Nodes read from it but
// never mutate it.
type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	CacheEnabled bool   `json:"cache_enabled"`

	// Data providers: "stub" | "yahoo" | "finnhub"
	FundamentalsProvider string `json:"fundamentals_provider"`
	FinnhubAPIKey        string `json:"finnhub_api_key"`

	// Fundamentals heuristics. Intentionally simple and interpretable.
	StrongGrowthPct     float64 `json:"strong_growth_pct"`
	StrongOperMarginPct float64 `json:"strong_oper_margin_pct"`
	MinOperMarginPct    float64 `json:"min_oper_margin_pct"`
	MaxDebtToEquity     float64 `json:"max_debt_to_equity"`

	// Divergence / resolution policy. Kept configurable rather than
	// hard-coded so the precedence rule can be tuned without a release.
	MaterialityThreshold float64 `json:"materiality_threshold"`
	MinActionConfidence  float64 `json:"min_action_confidence"`

	// LLM collaborator: "openai" | "deepseek" | "mock" | "none"
	LLMProvider string        `json:"llm_provider"`
	LLMModel    string        `json:"llm_model"`
	LLMBaseURL  string        `json:"llm_base_url"`
	LLMAPIKey   string        `json:"llm_api_key"`
	LLMTimeout  time.Duration `json:"llm_timeout"`

	// Agentic tool loop bound. Guarantees termination.
	MaxAgenticRounds int `json:"max_agentic_rounds"`

	Trace bool `json:"trace"`
}

// DefaultConfig builds the baseline configuration, then applies .env and
// environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		CacheEnabled: true,

		FundamentalsProvider: "stub",

		StrongGrowthPct:     5.0,
		StrongOperMarginPct: 30.0,
		MinOperMarginPct:    5.0,
		MaxDebtToEquity:     2.0,

		MaterialityThreshold: 0.40,
		MinActionConfidence:  0.55,

		LLMProvider: "none",
		LLMModel:    "deepseek-chat",
		LLMBaseURL:  "https://api.deepseek.com/v1",
		LLMTimeout:  30 * time.Second,

		MaxAgenticRounds: 4,
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("COVEREDCALL_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("COVEREDCALL_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("FUNDAMENTALS_PROVIDER"); val != "" {
		c.FundamentalsProvider = val
	}
	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}
	if val := os.Getenv("LLM_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" && c.LLMAPIKey == "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("LLM_TIMEOUT_S"); val != "" {
		if secs, err := strconv.ParseFloat(val, 64); err == nil && secs > 0 {
			c.LLMTimeout = time.Duration(secs * float64(time.Second))
		}
	}
	if val := os.Getenv("MAX_AGENTIC_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.MaxAgenticRounds = v
		}
	}
	if val := os.Getenv("MATERIALITY_THRESHOLD"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.MaterialityThreshold = v
		}
	}
	if val := os.Getenv("MIN_ACTION_CONFIDENCE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.MinActionConfidence = v
		}
	}
	if val := os.Getenv("COVEREDCALL_TRACE"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Trace = enabled
		}
	}
}

// EnsureDirectories creates the cache directory tree.
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.DataCacheDir, 0o755)
}
