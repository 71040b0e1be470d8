package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KnownTasks enumerates every action name the agent understands.
var KnownTasks = []string{
	"post-tweet", "reply-to-tweet", "like-tweet", "post-discord", "reply-to-discord",
}

// Config is the application's configuration model. Loaded once at process
// start; the agent never reloads it mid-run.
type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Tasks       []TaskConfig      `yaml:"tasks"`
	Multipliers MultipliersConfig `yaml:"multipliers"`
	Timing      TimingConfig      `yaml:"timing"`
	Interests   InterestsConfig   `yaml:"interests"`
	Engagement  EngagementConfig  `yaml:"engagement"`
	Persona     PersonaConfig     `yaml:"persona"`
	Discord     DiscordConfig     `yaml:"discord"`
	GitHub      GitHubConfig      `yaml:"github"`
	Market      MarketConfig      `yaml:"market"`
	LLM         LLMConfig         `yaml:"llm"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type AgentConfig struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	// LoopDelaySeconds separates consecutive cycles.
	LoopDelaySeconds int `yaml:"loopDelaySeconds"`
	// UseTimeBasedWeights enables the time-of-day multipliers.
	UseTimeBasedWeights bool `yaml:"useTimeBasedWeights"`
	// TimelineLimit bounds how many posts a replenish fetches.
	TimelineLimit int `yaml:"timelineLimit"`
}

type CredentialsConfig struct {
	// X/Twitter API bearer token for reads. If empty, read from env X_BEARER_TOKEN
	BearerToken string `yaml:"bearerToken"`
	// OAuth1.0a credentials for write actions (post/reply/like)
	ConsumerKey    string `yaml:"consumerKey"`
	ConsumerSecret string `yaml:"consumerSecret"`
	AccessToken    string `yaml:"accessToken"`
	AccessSecret   string `yaml:"accessSecret"`
	// Discord bot token. If empty, read from env DISCORD_BOT_TOKEN
	DiscordToken string `yaml:"discordToken"`
	// GitHub API token for repo activity reads. If empty, read from env GITHUB_TOKEN
	GitHubToken string `yaml:"githubToken"`
}

// TaskConfig is one candidate action with its draw weight.
type TaskConfig struct {
	Name    string  `yaml:"name"`
	Weight  float64 `yaml:"weight"`
	Enabled bool    `yaml:"enabled"`
}

type MultipliersConfig struct {
	// TweetNight scales broadcast posting during hours 1-5. Default 0.4.
	TweetNight float64 `yaml:"tweetNight"`
	// EngagementDay scales reply/like actions during hours 8-20. Default 1.5.
	EngagementDay float64 `yaml:"engagementDay"`
}

type TimingConfig struct {
	// TweetIntervalSeconds is the minimum gap between broadcast posts.
	TweetIntervalSeconds int `yaml:"tweetIntervalSeconds"`
}

type InterestsConfig struct {
	// Keywords overrides the per-topic keyword sets, keyed by topic name.
	Keywords map[string][]string `yaml:"keywords"`
}

type EngagementConfig struct {
	// Max engagement actions per hour and per day; 0 disables the cap.
	MaxPerHour int `yaml:"maxPerHour"`
	MaxPerDay  int `yaml:"maxPerDay"`
}

type PersonaConfig struct {
	Bio      string   `yaml:"bio"`
	Traits   []string `yaml:"traits"`
	Examples []string `yaml:"examples"`
}

type DiscordConfig struct {
	ChannelID string `yaml:"channelId"`
}

type GitHubConfig struct {
	// Repos lists owner/name repositories whose activity feeds broadcast context.
	Repos []string `yaml:"repos"`
}

type MarketConfig struct {
	// Tokens maps display symbol to token address for market context.
	Tokens map[string]string `yaml:"tokens"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Agent: AgentConfig{
			Name:                "devitalik",
			LoopDelaySeconds:    300,
			UseTimeBasedWeights: true,
			TimelineLimit:       50,
		},
		Tasks: []TaskConfig{
			{Name: "post-tweet", Weight: 1, Enabled: true},
			{Name: "reply-to-tweet", Weight: 2, Enabled: true},
			{Name: "like-tweet", Weight: 2, Enabled: true},
			{Name: "post-discord", Weight: 1, Enabled: false},
			{Name: "reply-to-discord", Weight: 1, Enabled: false},
		},
		Multipliers: MultipliersConfig{TweetNight: 0.4, EngagementDay: 1.5},
		Timing:      TimingConfig{TweetIntervalSeconds: 3600},
		Engagement:  EngagementConfig{MaxPerHour: 6, MaxPerDay: 40},
		Persona: PersonaConfig{
			Bio: "An AI observing and learning about blockchain and agent development.",
			Traits: []string{
				"protocol design", "developer tooling", "onchain data",
				"agent frameworks", "performance work",
			},
		},
		Market: MarketConfig{Tokens: map[string]string{
			"SOL": "So11111111111111111111111111111111111111112",
		}},
		LLM:     LLMConfig{Provider: "none", Model: "gpt-4o-mini"},
		Storage: StorageConfig{DBPath: "./devitalik.db"},
		Metrics: MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.BearerToken == "" {
		c.Credentials.BearerToken = os.Getenv("X_BEARER_TOKEN")
	}
	if c.Credentials.ConsumerKey == "" {
		c.Credentials.ConsumerKey = os.Getenv("X_CONSUMER_KEY")
	}
	if c.Credentials.ConsumerSecret == "" {
		c.Credentials.ConsumerSecret = os.Getenv("X_CONSUMER_SECRET")
	}
	if c.Credentials.AccessToken == "" {
		c.Credentials.AccessToken = os.Getenv("X_ACCESS_TOKEN")
	}
	if c.Credentials.AccessSecret == "" {
		c.Credentials.AccessSecret = os.Getenv("X_ACCESS_SECRET")
	}
	if c.Credentials.DiscordToken == "" {
		c.Credentials.DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
	}
	if c.Credentials.GitHubToken == "" {
		c.Credentials.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate rejects unknown task names and out-of-range values.
func (c *Config) Validate() error {
	known := make(map[string]struct{}, len(KnownTasks))
	for _, n := range KnownTasks {
		known[n] = struct{}{}
	}
	for _, t := range c.Tasks {
		if _, ok := known[t.Name]; !ok {
			return fmt.Errorf("unknown task %q", t.Name)
		}
		if t.Weight < 0 {
			return fmt.Errorf("task %q: negative weight %v", t.Name, t.Weight)
		}
	}
	if c.Multipliers.TweetNight < 0 || c.Multipliers.EngagementDay < 0 {
		return errors.New("multipliers must be non-negative")
	}
	if c.Agent.LoopDelaySeconds < 0 || c.Timing.TweetIntervalSeconds < 0 {
		return errors.New("delays must be non-negative")
	}
	return nil
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
