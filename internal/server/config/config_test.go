package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	if c.GRPCAddr != ":50051" {
		t.Errorf("GRPCAddr = %q", c.GRPCAddr)
	}
	if c.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v", c.AccessTokenTTL)
	}
	if c.IdempotencyTTL != 24*time.Hour {
		t.Errorf("IdempotencyTTL = %v", c.IdempotencyTTL)
	}
	if c.S3Bucket != "" || c.RedisURL != "" {
		t.Errorf("optional backends should be off by default: %+v", c)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	if err := os.WriteFile(path, []byte(`{"grpc_addr":":7000","s3_bucket":"revisions","idempotency_ttl":"1h"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		env   map[string]string
		args  []string
		apply func(c *Config)
	}{
		{
			name:  "defaults",
			apply: func(*Config) {},
		},
		{
			name: "file",
			args: []string{"-c", path},
			apply: func(c *Config) {
				c.GRPCAddr = ":7000"
				c.S3Bucket = "revisions"
				c.IdempotencyTTL = time.Hour
			},
		},
		{
			name: "env over file",
			env:  map[string]string{"DRAFTKEEPER_SERVER_GRPC_ADDR": ":7001", "DRAFTKEEPER_SERVER_REDIS_URL": "redis://r:6379/0"},
			args: []string{"--config", path},
			apply: func(c *Config) {
				c.GRPCAddr = ":7001"
				c.S3Bucket = "revisions"
				c.IdempotencyTTL = time.Hour
				c.RedisURL = "redis://r:6379/0"
			},
		},
		{
			name: "flags over env",
			env:  map[string]string{"DRAFTKEEPER_SERVER_GRPC_ADDR": ":7001"},
			args: []string{"-a", ":7002", "-t", "2m", "--log-format", "text"},
			apply: func(c *Config) {
				c.GRPCAddr = ":7002"
				c.AccessTokenTTL = 2 * time.Minute
				c.LogFormat = "text"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
			BindFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}

			got, err := Load(fs)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			want := defaults()
			tt.apply(&want)
			if diff := cmp.Diff(&want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
