package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Journal  JournalConfig  `yaml:"journal"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowOrigins   []string      `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// JournalConfig carries everything the rollup pipeline used to read from
// global settings: public URLs, locale, limits and timeouts.
type JournalConfig struct {
	ServePath        string            `yaml:"serve_path"`
	StaticServePath  string            `yaml:"static_serve_path"`
	Locale           string            `yaml:"locale"`
	Timezone         string            `yaml:"timezone"`
	ParticipantsCnt  int               `yaml:"participants_cnt"`
	FetchTimeout     time.Duration     `yaml:"fetch_timeout"`
	TransformWorkers int               `yaml:"transform_workers"`
	Labels           map[string]string `yaml:"labels"`
}

// Location resolves the configured timezone; day and week windows are cut in it.
func (j JournalConfig) Location() *time.Location {
	if j.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second, AllowOrigins: []string{"*"}},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Host: "127.0.0.1", Port: 3306, User: "root", Name: "symphonyx"},
		Journal: JournalConfig{
			ServePath:        "http://localhost:8080",
			StaticServePath:  "http://localhost:8080",
			Locale:           "en",
			ParticipantsCnt:  5,
			FetchTimeout:     5 * time.Second,
			TransformWorkers: 8,
		},
	}
}

func Load(configFile string) *Config {
	c := Default()

	paths := []string{"etc/config-dev.yaml", "/etc/symphonyx/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Journal.ServePath, "SERVE_PATH")
	envOverride(&c.Journal.StaticServePath, "STATIC_SERVE_PATH")
	envOverride(&c.Journal.Locale, "JOURNAL_LOCALE")
	envOverride(&c.Journal.Timezone, "JOURNAL_TZ")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideInt(&c.Journal.ParticipantsCnt, "JOURNAL_PARTICIPANTS_CNT")
	envOverrideInt(&c.Journal.TransformWorkers, "JOURNAL_TRANSFORM_WORKERS")
	envOverrideDuration(&c.Journal.FetchTimeout, "JOURNAL_FETCH_TIMEOUT")

	c.Journal.ServePath = strings.TrimRight(c.Journal.ServePath, "/")
	c.Journal.StaticServePath = strings.TrimRight(c.Journal.StaticServePath, "/")
	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
