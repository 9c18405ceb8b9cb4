package internal

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds how long the database may take to accept its first
	// connection once the container is running.
	DefaultTimeout = 60 * time.Second

	// DefaultPollInterval is the pause between connection attempts.
	DefaultPollInterval = 2 * time.Second

	// DefaultStopTimeout is the timeout in seconds for gracefully stopping a container
	// before forcefully killing it.
	DefaultStopTimeout = 10

	// DefaultPort is the port PostgreSQL listens on inside the container.
	DefaultPort = 5432

	DefaultDatabase        = DatabaseName("testdb")
	DefaultUser            = "postgres"
	DefaultHost            = "127.0.0.1"
	DefaultBaseImage       = "ubuntu:24.04"
	DefaultPostgresVersion = "16"
	DefaultDataDir         = "data"
)

type Config struct {
	ImageName       ImageName
	DatabaseName    DatabaseName
	User            string
	Host            string
	Port            int
	BaseImage       string
	PostgresVersion string
	TemplatePath    string

	DataDir   string
	DataFiles []string
	SQL       Statements

	Timeout      time.Duration
	PollInterval time.Duration
	StopTimeout  int

	KeepContainer bool
	NoCache       bool

	Render   bool
	Prune    bool
	LogLevel slog.Level

	Command Command
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ImageName:       DefaultImageName(DefaultDatabase),
		DatabaseName:    DefaultDatabase,
		User:            DefaultUser,
		Host:            DefaultHost,
		Port:            DefaultPort,
		BaseImage:       DefaultBaseImage,
		PostgresVersion: DefaultPostgresVersion,
		DataDir:         DefaultDataDir,
		Timeout:         DefaultTimeout,
		PollInterval:    DefaultPollInterval,
		StopTimeout:     DefaultStopTimeout,
		LogLevel:        slog.LevelInfo,
	}
}

// DefaultImageName returns the image tag used for a database when no explicit
// image name is configured.
func DefaultImageName(db DatabaseName) ImageName {
	return ImageName(fmt.Sprintf("dockerdb/%s:latest", strings.ToLower(string(db))))
}

// Validate reports configuration values that cannot produce a working fixture.
func (c Config) Validate() error {
	if c.DatabaseName == "" {
		return errors.New("database name must not be empty")
	}
	if c.User == "" {
		return errors.New("database user must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// ParseConfig parses command-line arguments and environment variables to construct
// the fixture configuration. Values are layered: defaults, then the fixture
// definition file (--fixture or DOCKERDB_FIXTURE), then DOCKERDB_* environment
// variables, then flags. Arguments remaining after the flags become the command
// to run against the fixture.
func ParseConfig(args []string, environment []string) (Config, error) {
	lookup := make(map[string]string)
	for _, variable := range environment {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}

	var (
		fixturePath     string
		database        string
		user            string
		host            string
		timeout         time.Duration
		interval        time.Duration
		baseImage       string
		postgresVersion string
		imageName       string
		dataDir         string
		dataFiles       stringSlice
		statements      stringSlice
		templatePath    string
		keep            bool
		noCache         bool
		render          bool
		prune           bool
		logLevel        string
	)

	fs := flag.NewFlagSet("dockerdb", flag.ContinueOnError)
	fs.StringVar(&fixturePath, "fixture", "", "fixture definition file (YAML)")
	fs.StringVar(&database, "db", "", "name of the database to create")
	fs.StringVar(&user, "user", "", "database user")
	fs.StringVar(&host, "host", "", "host used to reach published container ports")
	fs.DurationVar(&timeout, "timeout", 0, "how long to wait for the database to accept connections")
	fs.DurationVar(&interval, "interval", 0, "pause between connection attempts")
	fs.StringVar(&baseImage, "base-image", "", "base image the database is installed on")
	fs.StringVar(&postgresVersion, "pg-version", "", "PostgreSQL major version")
	fs.StringVar(&imageName, "image", "", "tag for the built image")
	fs.StringVar(&dataDir, "data-dir", "", "directory holding data files")
	fs.Var(&dataFiles, "data", "SQL data file loaded into the database (repeatable)")
	fs.Var(&statements, "sql", "SQL statement executed after the data files (repeatable)")
	fs.StringVar(&templatePath, "template", "", "custom Dockerfile template")
	fs.BoolVar(&keep, "keep", false, "leave the container running after teardown")
	fs.BoolVar(&noCache, "no-cache", false, "build the image without the layer cache")
	fs.BoolVar(&render, "render", false, "print the rendered Dockerfile and exit")
	fs.BoolVar(&prune, "prune", false, "remove leftover dockerdb containers and exit")
	fs.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	config := DefaultConfig()
	explicitImage := false

	if !set["fixture"] {
		fixturePath = lookup["DOCKERDB_FIXTURE"]
	}
	if fixturePath != "" {
		definition, err := LoadDefinition(fixturePath)
		if err != nil {
			return Config{}, err
		}
		explicitImage = definition.Image != ""
		definition.Apply(&config)
	}

	if value, ok := lookup["DOCKERDB_DATABASE"]; ok && value != "" {
		config.DatabaseName = DatabaseName(value)
	}
	if value, ok := lookup["DOCKERDB_USER"]; ok && value != "" {
		config.User = value
	}
	if value, ok := lookup["DOCKERDB_HOST"]; ok && value != "" {
		config.Host = value
	}
	if value, ok := lookup["DOCKERDB_TIMEOUT"]; ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCKERDB_TIMEOUT %q: %w\nUse a Go duration such as 90s or 2m", value, err)
		}
		config.Timeout = d
	}
	if value, ok := lookup["DOCKERDB_INTERVAL"]; ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCKERDB_INTERVAL %q: %w\nUse a Go duration such as 500ms or 2s", value, err)
		}
		config.PollInterval = d
	}
	if value, ok := lookup["DOCKERDB_LOG_LEVEL"]; ok && value != "" && !set["log-level"] {
		logLevel = value
	}

	if set["db"] {
		config.DatabaseName = DatabaseName(database)
	}
	if set["user"] {
		config.User = user
	}
	if set["host"] {
		config.Host = host
	}
	if set["timeout"] {
		config.Timeout = timeout
	}
	if set["interval"] {
		config.PollInterval = interval
	}
	if set["base-image"] {
		config.BaseImage = baseImage
	}
	if set["pg-version"] {
		config.PostgresVersion = postgresVersion
	}
	if set["data-dir"] {
		config.DataDir = dataDir
	}
	if set["data"] {
		config.DataFiles = []string(dataFiles)
	}
	if set["sql"] {
		config.SQL = Statements(statements)
	}
	if set["template"] {
		config.TemplatePath = templatePath
	}
	if set["keep"] {
		config.KeepContainer = keep
	}
	if set["image"] {
		config.ImageName = ImageName(imageName)
		explicitImage = true
	}
	if !explicitImage {
		config.ImageName = DefaultImageName(config.DatabaseName)
	}
	if logLevel != "" {
		level, err := ParseLevel(logLevel)
		if err != nil {
			return Config{}, err
		}
		config.LogLevel = level
	}

	config.NoCache = noCache
	config.Render = render
	config.Prune = prune
	config.Command = Command(fs.Args())

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
