// Package config loads the explicit settings passed into every service client.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server and the pipeline need. Credentials live here
// instead of being read from the environment at call sites.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`
	LogLevel   string `mapstructure:"log_level"`

	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`

	RCSBDataURL   string `mapstructure:"rcsb_data_url"`
	RCSBFilesURL  string `mapstructure:"rcsb_files_url"`
	RCSBSearchURL string `mapstructure:"rcsb_search_url"`
	PDBeURL       string `mapstructure:"pdbe_url"`
	UniProtURL    string `mapstructure:"uniprot_url"`
	UnpaywallURL  string `mapstructure:"unpaywall_url"`
	MCSAURL       string `mapstructure:"mcsa_url"`
	DynaMutURL    string `mapstructure:"dynamut_url"`
	MCSMPPIURL    string `mapstructure:"mcsm_ppi_url"`
	BlastURL      string `mapstructure:"blast_url"`

	OpenAIAPIKey      string  `mapstructure:"openai_api_key"`
	OpenAIBaseURL     string  `mapstructure:"openai_base_url"`
	OpenAIModel       string  `mapstructure:"openai_model"`
	OpenAITemperature float64 `mapstructure:"openai_temperature"`

	UnpaywallEmail string `mapstructure:"unpaywall_email"`

	BlastProgram  string `mapstructure:"blast_program"`
	BlastDatabase string `mapstructure:"blast_database"`

	HotspotDistanceCutoff   float64 `mapstructure:"hotspot_distance_cutoff"`
	HotspotContactThreshold int     `mapstructure:"hotspot_contact_threshold"`
	PaperMaxChars           int     `mapstructure:"paper_max_chars"`
}

// SetDefaults registers a default for every key so that AutomaticEnv can see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "0.0.0.0:8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")

	v.SetDefault("http_timeout", 60*time.Second)
	v.SetDefault("requests_per_second", 5.0)
	v.SetDefault("user_agent", "protlit/0.1 (+https://github.com/yumyai/protlit)")

	v.SetDefault("rcsb_data_url", "https://data.rcsb.org/rest/v1/core")
	v.SetDefault("rcsb_files_url", "https://files.rcsb.org/download")
	v.SetDefault("rcsb_search_url", "https://search.rcsb.org/rcsbsearch/v2/query")
	v.SetDefault("pdbe_url", "https://www.ebi.ac.uk/pdbe/api")
	v.SetDefault("uniprot_url", "https://rest.uniprot.org/uniprotkb")
	v.SetDefault("unpaywall_url", "https://api.unpaywall.org/v2")
	v.SetDefault("mcsa_url", "https://www.ebi.ac.uk/thornton-srv/m-csa/rest")
	v.SetDefault("dynamut_url", "https://dynamut-api.example.org/predict")
	v.SetDefault("mcsm_ppi_url", "https://mcsmp-api.example.org/predict")
	v.SetDefault("blast_url", "https://blast.ncbi.nlm.nih.gov/Blast.cgi")

	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_model", "gpt-4")
	v.SetDefault("openai_temperature", 0.3)

	v.SetDefault("unpaywall_email", "")

	v.SetDefault("blast_program", "blastp")
	v.SetDefault("blast_database", "pdbaa")

	v.SetDefault("hotspot_distance_cutoff", 6.0)
	v.SetDefault("hotspot_contact_threshold", 30)
	v.SetDefault("paper_max_chars", 10000)
}

// NewViper returns a viper instance reading PROTLIT_* variables. The unprefixed
// OPENAI_API_KEY and UNPAYWALL_EMAIL are honoured as well.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PROTLIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("openai_api_key", "PROTLIT_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("unpaywall_email", "PROTLIT_UNPAYWALL_EMAIL", "UNPAYWALL_EMAIL")

	SetDefaults(v)
	return v
}

// Load reads an optional .env file and then the environment.
// A missing .env is reported through dotenvLoaded so the caller can log it.
func Load(envFiles ...string) (cfg *Config, dotenvLoaded bool, err error) {
	dotenvLoaded = godotenv.Load(envFiles...) == nil

	cfg, err = LoadWithViper(NewViper())
	return cfg, dotenvLoaded, err
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return errors.Newf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.RequestsPerSecond <= 0 {
		return errors.Newf("requests_per_second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.HotspotDistanceCutoff <= 0 {
		return errors.Newf("hotspot_distance_cutoff must be positive, got %v", c.HotspotDistanceCutoff)
	}
	if c.HotspotContactThreshold < 0 {
		return errors.Newf("hotspot_contact_threshold must not be negative, got %d", c.HotspotContactThreshold)
	}
	if c.PaperMaxChars <= 0 {
		return errors.Newf("paper_max_chars must be positive, got %d", c.PaperMaxChars)
	}
	return nil
}

// LLMEnabled reports whether a language model key was supplied.
func (c *Config) LLMEnabled() bool {
	return c.OpenAIAPIKey != ""
}
