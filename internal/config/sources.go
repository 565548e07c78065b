package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PublicPrefix marks environment variables that are safe to expose to
// client builds.
const PublicPrefix = "PUBLIC_"

//go:embed app.yaml
var embeddedConfig []byte

// Source is one layer of named configuration values.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// EnvSource reads the process environment, optionally under a prefix.
type EnvSource struct {
	Prefix string
	lookup func(string) (string, bool)
}

func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix, lookup: os.LookupEnv}
}

func (s *EnvSource) Name() string {
	if s.Prefix == "" {
		return "env"
	}
	return "env:" + s.Prefix
}

func (s *EnvSource) Lookup(key string) (string, bool) {
	return s.lookup(s.Prefix + key)
}

// DotenvSource re-reads a .env file on every lookup. A missing file is
// treated as empty.
type DotenvSource struct {
	Path string
}

func (s *DotenvSource) Name() string { return "dotenv:" + s.Path }

func (s *DotenvSource) Lookup(key string) (string, bool) {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// ViperSource serves keys from a dedicated viper instance.
type ViperSource struct {
	name string
	v    *viper.Viper
}

// NewEmbeddedSource loads the YAML document compiled into the binary.
func NewEmbeddedSource() (*ViperSource, error) {
	return NewYAMLSource("embedded", embeddedConfig)
}

func NewYAMLSource(name string, data []byte) (*ViperSource, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to read %s config: %w", name, err)
	}
	return &ViperSource{name: name, v: v}, nil
}

func (s *ViperSource) Name() string { return s.name }

func (s *ViperSource) Lookup(key string) (string, bool) {
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

// MapSource is a fixed set of values.
type MapSource map[string]string

func (m MapSource) Name() string { return "map" }

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
