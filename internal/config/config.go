package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	sdk "github.com/matrixorigin/moi-go-sdk"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Remote   RemoteConfig   `yaml:"remote"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Media    MediaConfig    `yaml:"media"`
	Speech   SpeechConfig   `yaml:"speech"`
	Google   GoogleConfig   `yaml:"google"`
	MOI      MOIConfig      `yaml:"moi"`
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
	Port     int    `yaml:"port"`
	Timezone string `yaml:"timezone"`
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	AdminPhone string `yaml:"admin_phone"`
}

// RemoteConfig selects the hosted store the board mirrors to.
// Backend is one of "rest", "mysql" or "none".
type RemoteConfig struct {
	Backend string `yaml:"backend"`
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type SessionConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	File      string `yaml:"file"`
	TTLHours  int    `yaml:"ttl_hours"`
}

type MediaConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// SpeechConfig names an espeak-ng compatible binary. Preferred adds voice
// name fragments ranked ahead of the built-in vendor list.
type SpeechConfig struct {
	Command   string   `yaml:"command"`
	Preferred []string `yaml:"preferred"`
}

type GoogleConfig struct {
	DriveUploadURL string `yaml:"drive_upload_url"`
	SheetsURL      string `yaml:"sheets_url"`
}

type MOIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	CatalogID  int64  `yaml:"catalog_id"`
	DatabaseID int64  `yaml:"database_id"`
	TasksTable int64  `yaml:"tasks_table_id"`
}

func Load(configFile string) *Config {
	c := &Config{
		Server:   ServerConfig{Port: 9871},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Auth:     AuthConfig{JWTSecret: "smart-task-secret-2026", AdminPhone: "9999"},
		Remote:   RemoteConfig{Backend: "rest"},
		Database: DatabaseConfig{Port: 3306, Name: "smart_task"},
		Session:  SessionConfig{Backend: "file", File: "data/session.json", TTLHours: 24 * 30},
		Media:    MediaConfig{Dir: "media", MaxSizeMB: 64},
		Speech:   SpeechConfig{Command: "espeak-ng"},
		Google: GoogleConfig{
			DriveUploadURL: "https://www.googleapis.com/upload/drive/v3",
			SheetsURL:      "https://sheets.googleapis.com/v4",
		},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/smart-task/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.Remote.Backend, "REMOTE_BACKEND")
	envOverride(&c.Remote.URL, "SUPABASE_URL")
	envOverride(&c.Remote.Key, "SUPABASE_KEY")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Session.Backend, "SESSION_BACKEND")
	envOverride(&c.Session.RedisAddr, "REDIS_ADDR")
	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&c.MOI.BaseURL, "MOI_BASE_URL")
	envOverride(&c.MOI.APIKey, "MOI_API_KEY")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Server.Timezone, "TZ_NAME")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Location is the zone used for "today". Calendar days are local wall-clock
// days, never UTC.
func (c *Config) Location() *time.Location {
	if c.Server.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
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

func (c *Config) NewRawClient() (*sdk.RawClient, error) {
	return sdk.NewRawClient(c.MOI.BaseURL, c.MOI.APIKey)
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
