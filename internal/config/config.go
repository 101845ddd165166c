package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultWebhookBase = "http://localhost:5678/webhook"

// FileTypes is the extension allow-list used by every file scan.
var FileTypes = []string{".txt", ".pdf", ".docx", ".xlsx", ".jpg", ".png", ".mp4", ".mp3"}

type AI struct {
	Backend      string        `yaml:"backend"` // "n8n" or "openai"
	TextURL      string        `yaml:"text_url"`
	VoiceURL     string        `yaml:"voice_url"`
	ImageTextURL string        `yaml:"image_text_url"`
	CaptionURL   string        `yaml:"caption_url"`
	CodeURL      string        `yaml:"code_url"`
	Timeout      time.Duration `yaml:"timeout"`
	Proxy        string        `yaml:"proxy"`
	APIKey       string        `yaml:"-"`
	Model        string        `yaml:"model"`
}

// Config is resolved once at startup and handed to every collaborator.
type Config struct {
	Home     string `yaml:"-"`
	Pictures string `yaml:"pictures"`

	Aliases map[string]string `yaml:"aliases"`

	StartupScanDirs []string `yaml:"startup_scan_dirs"`
	FullScanDirs    []string `yaml:"full_scan_dirs"`
	FileTypes       []string `yaml:"file_types"`
	ScanSkipDirs    []string `yaml:"scan_skip_dirs"`

	CatalogPath string `yaml:"catalog"`
	IndexPath   string `yaml:"index"`
	DomainsPath string `yaml:"domains"`
	DomainsTopN int    `yaml:"domains_top_n"`

	AI AI `yaml:"ai"`

	WhisperModel string        `yaml:"whisper_model"`
	Language     string        `yaml:"language"`
	Voice        string        `yaml:"voice"`
	ChimePath    string        `yaml:"chime"`
	SocketPath   string        `yaml:"socket"`
	RecordFor    time.Duration `yaml:"record_for"`
	DuckFactor   float64       `yaml:"duck_factor"`

	// AlwaysListen keeps the microphone loop running. When false the
	// daemon only listens on a control-socket trigger.
	AlwaysListen bool `yaml:"always_listen"`
}

// Default builds the configuration for the given home directory.
func Default(home string) *Config {
	in := func(name string) string { return filepath.Join(home, name) }

	userDirs := []string{
		in("Documents"),
		in("Desktop"),
		in("Videos"),
		in("Pictures"),
		in("Downloads"),
		in("Music"),
	}

	return &Config{
		Home:     home,
		Pictures: in("Pictures"),
		Aliases: map[string]string{
			"downloads":      in("Downloads"),
			"documents":      in("Documents"),
			"desktop":        in("Desktop"),
			"music":          in("Music"),
			"pictures":       in("Pictures"),
			"videos":         in("Videos"),
			"project folder": filepath.Join(in("Desktop"), "Project", "J.A.R.V.I.S AI"),
		},
		StartupScanDirs: userDirs,
		FullScanDirs:    append(append([]string(nil), userDirs...), systemDirs()...),
		FileTypes:       append([]string(nil), FileTypes...),
		ScanSkipDirs:    []string{".git", "node_modules", "$Recycle.Bin", ".cache"},
		CatalogPath:     "installed_apps.csv",
		IndexPath:       in("file_index.csv"),
		DomainsPath:     "top10milliondomains.csv",
		DomainsTopN:     10000,
		AI: AI{
			Backend:      "n8n",
			TextURL:      DefaultWebhookBase + "/text-query-workflow",
			VoiceURL:     DefaultWebhookBase + "/voice-to-text-workflow",
			ImageTextURL: DefaultWebhookBase + "/image-to-text-workflow",
			CaptionURL:   DefaultWebhookBase + "/image-caption-workflow",
			CodeURL:      DefaultWebhookBase + "/code-query-workflow",
			Timeout:      60 * time.Second,
			Model:        "gpt-5-nano",
		},
		WhisperModel: "third_party/whisper.cpp/models/ggml-base.en.bin",
		Language:     "en",
		Voice:        "en",
		ChimePath:    "beep.mp3",
		SocketPath:   "/tmp/jarvis.sock",
		RecordFor:    5 * time.Second,
		DuckFactor:   0.3,
		AlwaysListen: true,
	}
}

func systemDirs() []string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return []string{
			filepath.Join(drive+`\`, "Program Files"),
			filepath.Join(drive+`\`, "Program Files (x86)"),
			drive + `\`,
		}
	}
	return []string{"/opt", "/usr/local"}
}

// Overrides are command-line settings. Empty fields leave the loaded value.
type Overrides struct {
	Proxy       string
	Backend     string
	WebhookBase string
	TriggerOnly bool
}

func (o Overrides) apply(c *Config) {
	if o.Proxy != "" {
		c.AI.Proxy = o.Proxy
	}
	if o.Backend != "" {
		c.AI.Backend = o.Backend
	}
	if o.WebhookBase != "" {
		c.SetWebhookBase(o.WebhookBase)
	}
	if o.TriggerOnly {
		c.AlwaysListen = false
	}
}

// Load resolves the home directory, applies the optional YAML file at path,
// then the environment, then the overrides, and validates the result.
func Load(path string, o Overrides) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home dir: %w", err)
	}

	cfg := Default(home)

	if path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	o.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	aliases := c.Aliases
	c.Aliases = nil

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.Pictures = expandHome(c.Pictures, c.Home)
	if _, set := c.Aliases["pictures"]; !set {
		aliases["pictures"] = c.Pictures
	}
	for k, v := range c.Aliases {
		aliases[strings.ToLower(k)] = expandHome(v, c.Home)
	}
	c.Aliases = aliases

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("JARVIS_AI_BACKEND"); v != "" {
		c.AI.Backend = v
	}
	if v := os.Getenv("JARVIS_WEBHOOK_BASE"); v != "" {
		c.SetWebhookBase(v)
	}
	if v := os.Getenv("JARVIS_AI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.AI.Timeout = d
		}
	}
	if v := os.Getenv("JARVIS_DOMAINS_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DomainsTopN = n
		}
	}
}

// SetWebhookBase points every n8n endpoint at a new base URL.
func (c *Config) SetWebhookBase(base string) {
	base = strings.TrimRight(base, "/")
	c.AI.TextURL = base + "/text-query-workflow"
	c.AI.VoiceURL = base + "/voice-to-text-workflow"
	c.AI.ImageTextURL = base + "/image-to-text-workflow"
	c.AI.CaptionURL = base + "/image-caption-workflow"
	c.AI.CodeURL = base + "/code-query-workflow"
}

func (c *Config) Validate() error {
	switch c.AI.Backend {
	case "n8n":
	case "openai":
		if c.AI.APIKey == "" {
			return errors.New("openai backend requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown ai backend %q", c.AI.Backend)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai timeout must be positive")
	}
	if c.DomainsTopN <= 0 {
		return errors.New("domains_top_n must be positive")
	}
	return nil
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
