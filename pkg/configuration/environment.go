package configuration

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mdotservice/serviceinfo/pkg/logging"
)

const DefaultServiceURL = "https://mdotservice.com/mdot/service_info/index.php"

// DefaultEnvFiles are read, when present, before the process environment.
var DefaultEnvFiles = []string{".env", ".env.local"}

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type ServiceOptions struct {
	URL             string        `env:"SERVICE_INFO_URL" envDefault:"https://mdotservice.com/mdot/service_info/index.php"`
	Timeout         time.Duration `env:"SERVICE_INFO_TIMEOUT" envDefault:"30s"`
	RequestIDHeader string        `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
}

// Validate checks that the remote endpoint can actually be called.
func (s *ServiceOptions) Validate() error {
	u, err := url.Parse(strings.TrimSpace(s.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid SERVICE_INFO_URL=%q", s.URL)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("SERVICE_INFO_TIMEOUT must be positive, got %s", s.Timeout)
	}
	return nil
}

type AggregatorOptions struct {
	MaxConcurrency int `env:"AGGREGATOR_MAX_CONCURRENCY" envDefault:"8"`
}

type Configuration struct {
	Service    ServiceOptions
	Aggregator AggregatorOptions

	LogLevel        string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath         string `env:"LOG_PATH"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

// New loads a configuration from the given env files and the process
// environment.
func New(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("service configuration error: %w", err)
	}
	if c.Aggregator.MaxConcurrency < 1 {
		return fmt.Errorf("AGGREGATOR_MAX_CONCURRENCY must be at least 1, got %d", c.Aggregator.MaxConcurrency)
	}

	if strings.TrimSpace(c.LogPath) == "" {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
		return nil
	}
	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
