package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
)

// EnvPrefix namespaces every environment variable
const EnvPrefix = "CENSUS"

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig selects what the pipeline loads and how
type PipelineConfig struct {
	// Years is a selection such as "2015-2020" or "2012,2014-2016".
	// Empty means every year found on disk.
	Years string `yaml:"years" envconfig:"YEARS"`
	// Regions of interest; rows outside them are dropped after geography
	// is resolved
	Regions []string `yaml:"regions" envconfig:"REGIONS" validate:"min=1,dive,oneof=Norte Nordeste Sudeste Sul Centro-Oeste"`
	// Clusters is carried through to the outputs for downstream clustering
	Clusters int `yaml:"clusters" envconfig:"CLUSTERS" validate:"min=1"`
	// SubjectCodes narrows the target group to these area codes
	SubjectCodes []string `yaml:"subject_codes" envconfig:"SUBJECT_CODES" validate:"dive,len=2,numeric"`
	// SubjectNames narrows the target group by area name, e.g. "Engenharia"
	SubjectNames []string `yaml:"subject_names" envconfig:"SUBJECT_NAMES"`
	// ChunkSize is the number of rows per batch when reading course files;
	// zero reads each file at once
	ChunkSize int `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"min=0"`
	// TopMunicipalities is the length of the municipality rankings
	TopMunicipalities int `yaml:"top_municipalities" envconfig:"TOP_MUNICIPALITIES" validate:"min=1"`
	// ParallelYears bounds how many years load concurrently
	ParallelYears int `yaml:"parallel_years" envconfig:"PARALLEL_YEARS" validate:"min=1,max=64"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// DataDir holds the microdata folders (microdados_censo_da_educacao_superior_<year>)
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	// CSVDirs are searched recursively for unified course files and
	// institution metadata. Defaults to DataDir.
	CSVDirs   []string `yaml:"csv_dirs" envconfig:"CSV_DIRS"`
	OutputDir string   `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	// Database is an optional SQLite file receiving the canonical table
	Database string `yaml:"database" envconfig:"DATABASE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Regions:           []string{"Nordeste", "Sudeste"},
			Clusters:          3,
			TopMunicipalities: 10,
			ParallelYears:     1,
		},
		Paths: PathsConfig{
			DataDir:   "Dados",
			OutputDir: "output",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/census.log",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
		},
	}
}

// Load builds the configuration from defaults, the first config file found
// and the environment
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file; an empty path skips the file layer
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				With("path", path)
		}
	}

	// Fields without a matching variable keep their file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Normalize fills derived defaults and canonicalises list values. Call it
// again after overriding fields such as Paths.DataDir.
func (c *Config) Normalize() {
	if len(c.Paths.CSVDirs) == 0 {
		c.Paths.CSVDirs = []string{
			filepath.Join(c.Paths.DataDir, "Comma Separated Values Source File"),
			c.Paths.DataDir,
		}
	}
	c.Pipeline.Regions = trimAll(c.Pipeline.Regions)
	c.Pipeline.SubjectNames = trimAll(c.Pipeline.SubjectNames)
	codes := trimAll(c.Pipeline.SubjectCodes)
	for i, code := range codes {
		if len(code) == 1 {
			codes[i] = "0" + code
		}
	}
	c.Pipeline.SubjectCodes = codes
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError("config validation failed", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s fails %s", field, fe.Tag()))
	}
	return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
