package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/flagx"
)

const EnvPrefix = "DRAFTKEEPER"

// Config holds runtime settings for the DraftKeeper CLI.
type Config struct {
	ServerAddr          string        `mapstructure:"server_addr"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`

	DraftsDB         string        `mapstructure:"drafts_db"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	PushDelay        time.Duration `mapstructure:"push_delay"`
	PreviewFields    []string      `mapstructure:"preview_fields"`

	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
	Login    string `mapstructure:"login"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.DraftsDB = "drafts.db"
	c.SnapshotInterval = 10 * time.Second
	c.PushDelay = 30 * time.Second
	c.PreviewFields = append([]string(nil), document.DefaultPreviewFields...)
	c.LogFile = "draftkeeper.log"
	c.LogLevel = "info"
	c.Login = ""
}

func setDefaults(v *viper.Viper) {
	var d Config
	d.LoadDefaults()
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("online_check_interval", d.OnlineCheckInterval)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("drafts_db", d.DraftsDB)
	v.SetDefault("snapshot_interval", d.SnapshotInterval)
	v.SetDefault("push_delay", d.PushDelay)
	v.SetDefault("preview_fields", d.PreviewFields)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("login", d.Login)
}

// Load builds a Config from defaults, the optional config file, the
// environment and the flags in fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if err := flagx.Load(v, fs, EnvPrefix, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
