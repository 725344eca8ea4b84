package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	Prefix     string `mapstructure:"prefix"`
	RoomTTLSec int    `mapstructure:"roomTTLSec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Room 创建房间时的默认人数限制
type Room struct {
	DefaultMinUsers uint
	DefaultMaxUsers uint // 0 表示不限
}

// Operator 运营后台账号
type Operator struct {
	Username     string
	PasswordHash string
}

type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	BodyBytes   int64
	TimeoutSec  int
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Room     Room
	Operator Operator
	Limits   Limits
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTLMin) * time.Minute
}

func (c *Config) RoomCacheTTL() time.Duration {
	return time.Duration(c.Redis.RoomTTLSec) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Limits.TimeoutSec) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "secret-nick")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "secret-nick")
	v.SetDefault("jwt.accessTokenTTLMin", 120)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("redis.prefix", "secret-nick")
	v.SetDefault("redis.roomTTLSec", 300)
	v.SetDefault("room.defaultMinUsers", 3)
	v.SetDefault("room.defaultMaxUsers", 0)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.bodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
}

// Load 读取 YAML + APP_ 前缀环境变量（APP_DB_DSN 覆盖 db.dsn）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Room.DefaultMaxUsers > 0 && c.Room.DefaultMaxUsers < c.Room.DefaultMinUsers {
		return nil, fmt.Errorf("config: room.defaultMaxUsers (%d) < room.defaultMinUsers (%d)", c.Room.DefaultMaxUsers, c.Room.DefaultMinUsers)
	}
	return &c, nil
}
