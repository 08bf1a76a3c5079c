package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  postgresDsn: "host=localhost user=postgres"
  redisAddr: "localhost:6379"
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if conf.Server.ListenAddr != ":8000" {
		t.Fatalf("expected default listen addr, got %s", conf.Server.ListenAddr)
	}
	if conf.Server.MaxConnections != 5000 {
		t.Fatalf("expected default ceiling 5000, got %d", conf.Server.MaxConnections)
	}
	if conf.Feed.Channel != "mehfil:feed" {
		t.Fatalf("expected default channel, got %s", conf.Feed.Channel)
	}
	if conf.Feed.DefaultPageSize != 50 || conf.Feed.MaxPageSize != 100 {
		t.Fatalf("expected default page sizes 50/100, got %d/%d",
			conf.Feed.DefaultPageSize, conf.Feed.MaxPageSize)
	}
	if conf.Feed.CacheTTLSeconds != 10 {
		t.Fatalf("expected default cache ttl 10, got %d", conf.Feed.CacheTTLSeconds)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  listenAddr: ":9000"
  maxConnections: 42
feed:
  channel: "feed:test"
  maxPageSize: 25
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if conf.Server.ListenAddr != ":9000" {
		t.Fatalf("expected explicit listen addr, got %s", conf.Server.ListenAddr)
	}
	if conf.Server.MaxConnections != 42 {
		t.Fatalf("expected ceiling 42, got %d", conf.Server.MaxConnections)
	}
	if conf.Feed.Channel != "feed:test" {
		t.Fatalf("expected explicit channel, got %s", conf.Feed.Channel)
	}
	if conf.Feed.MaxPageSize != 25 {
		t.Fatalf("expected max page size 25, got %d", conf.Feed.MaxPageSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
