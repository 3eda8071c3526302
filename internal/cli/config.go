package cli

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

// Config is the optional config.toml. Flags override every value.
type Config struct {
	Version  int    `toml:"version"`
	Compress bool   `toml:"compress"`
	Types    string `toml:"types"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

type CacheConfig struct {
	Backend  string `toml:"backend"` // file, redis or none
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	MaxBody int64  `toml:"max_body"` // bytes
}

type StoreConfig struct {
	Backend  string `toml:"backend"` // file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

func defaultConfig() *Config {
	return &Config{
		Version: codec.Latest,
		Cache:   CacheConfig{Backend: "file"},
		Server:  ServerConfig{Addr: ":8080", MaxBody: 32 << 20},
		Store:   StoreConfig{Backend: "file"},
	}
}

// readConfig decodes path over the defaults. A missing file is an error only
// when the path was given explicitly.
func readConfig(path string, explicit bool, logger *log.Logger) (*Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "path", path, "keys", strings.Join(keys, ", "))
	}
	if _, err := validateVersion(cfg.Version); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

func validateVersion(v int) (uint8, error) {
	return errors.ValidateVersion(v, codec.Latest)
}
