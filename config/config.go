package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vecbuf"
	"github.com/hupe1980/vecbuf/blobstore"
	"github.com/hupe1980/vecbuf/blobstore/minio"
	"github.com/hupe1980/vecbuf/blobstore/s3"
	"github.com/hupe1980/vecbuf/codec"
	"github.com/hupe1980/vecbuf/resource"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "VECBUF_CONFIG"

// Store backends.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendMinIO  = "minio"
	BackendS3     = "s3"
)

// Config is the top-level configuration.
type Config struct {
	Log       LogConfig      `yaml:"log"`
	Resources ResourceConfig `yaml:"resources"`

	// Codec fixes the stream codec by name ("plain", "zstd", "lz4").
	// Empty selects the codec from each file or blob name.
	Codec string `yaml:"codec"`

	// Workers is the default worker count for parallel reductions.
	Workers int `yaml:"workers"`

	Store StoreConfig `yaml:"store"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ResourceConfig mirrors resource.Config.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	MaxWorkers         int64 `yaml:"max_workers"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// StoreConfig selects and configures the blob store used for remote
// export and import.
type StoreConfig struct {
	Backend string `yaml:"backend"`

	// Root is the directory of the local backend.
	Root string `yaml:"root"`

	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Default returns the configuration used before a file is applied.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Resources: ResourceConfig{
			MaxWorkers: int64(runtime.NumCPU()),
		},
		Workers: runtime.NumCPU(),
		Store: StoreConfig{
			Backend: BackendLocal,
			Root:    ".",
		},
	}
}

// Load loads the file named by VECBUF_CONFIG. Without the variable the
// defaults are returned.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.Store.Root = expandVars(c.Store.Root)
	c.Store.Bucket = expandVars(c.Store.Bucket)
	c.Store.Prefix = expandVars(c.Store.Prefix)
	c.Store.Region = expandVars(c.Store.Region)
	c.Store.Endpoint = expandVars(c.Store.Endpoint)
	c.Store.AccessKey = expandVars(c.Store.AccessKey)
	c.Store.SecretKey = expandVars(c.Store.SecretKey)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if c.Resources.MemoryLimitBytes < 0 {
		errs = append(errs, errors.New("resources.memory_limit_bytes must not be negative"))
	}
	if c.Resources.MaxWorkers < 0 {
		errs = append(errs, errors.New("resources.max_workers must not be negative"))
	}
	if c.Resources.IOLimitBytesPerSec < 0 {
		errs = append(errs, errors.New("resources.io_limit_bytes_per_sec must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be positive"))
	}

	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}

	switch c.Store.Backend {
	case BackendLocal:
		if c.Store.Root == "" {
			errs = append(errs, errors.New("store.root is required for the local backend"))
		}
	case BackendMemory:
	case BackendMinIO:
		if c.Store.Endpoint == "" {
			errs = append(errs, errors.New("store.endpoint is required for the minio backend"))
		}
		fallthrough
	case BackendS3:
		if c.Store.Bucket == "" {
			errs = append(errs, fmt.Errorf("store.bucket is required for the %s backend", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	return errors.Join(errs...)
}

// Logger builds the configured logger.
func (c *Config) Logger() *vecbuf.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Log.Level))

	if strings.EqualFold(c.Log.Format, "json") {
		return vecbuf.NewJSONLogger(level)
	}
	return vecbuf.NewTextLogger(level)
}

// Controller builds a resource controller from the configured limits.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
		MaxWorkers:         c.Resources.MaxWorkers,
		IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
	})
}

// Options returns buffer options for the configured codec, logger and
// resource controller. Buffers built from the same slice share the
// controller.
func (c *Config) Options() []vecbuf.Option {
	opts := []vecbuf.Option{
		vecbuf.WithLogger(c.Logger()),
		vecbuf.WithResourceController(c.Controller()),
	}
	if c.Codec != "" {
		cd, _ := codec.ByName(c.Codec)
		opts = append(opts, vecbuf.WithCodec(cd))
	}
	return opts
}

// OpenStore connects to the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Store

	switch sc.Backend {
	case BackendLocal:
		return blobstore.NewLocalStore(sc.Root), nil
	case BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case BackendMinIO:
		client, err := miniogo.New(sc.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.Secure,
			Region: sc.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, sc.Bucket, sc.Prefix), nil
	case BackendS3:
		var loadOpts []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(sc.Region))
		}
		if sc.AccessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
					return aws.Credentials{AccessKeyID: sc.AccessKey, SecretAccessKey: sc.SecretKey}, nil
				}),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if sc.Endpoint != "" {
				o.BaseEndpoint = aws.String(sc.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3.NewStore(client, sc.Bucket, sc.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store.backend %q", sc.Backend)
	}
}
