package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Feed   Feed   `yaml:"feed"`
}

type Server struct {
	ListenAddr     string `yaml:"listenAddr"`
	PostgresDsn    string `yaml:"postgresDsn"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisDB        int    `yaml:"redisDB"`
	MemcachedAddr  string `yaml:"memcachedAddr"`
	MaxConnections int    `yaml:"maxConnections"`
	EnableTrace    bool   `yaml:"enableTrace"`
	TraceEndpoint  string `yaml:"traceEndpoint"`
}

type Feed struct {
	Channel         string `yaml:"channel"`
	DefaultPageSize int    `yaml:"defaultPageSize"`
	MaxPageSize     int    `yaml:"maxPageSize"`
	CacheTTLSeconds int    `yaml:"cacheTTLSeconds"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Server.MaxConnections == 0 {
		config.Server.MaxConnections = 5000
	}
	if config.Feed.Channel == "" {
		config.Feed.Channel = "mehfil:feed"
	}
	if config.Feed.DefaultPageSize == 0 {
		config.Feed.DefaultPageSize = 50
	}
	if config.Feed.MaxPageSize == 0 {
		config.Feed.MaxPageSize = 100
	}
	if config.Feed.CacheTTLSeconds == 0 {
		config.Feed.CacheTTLSeconds = 10
	}

	return config, nil
}
