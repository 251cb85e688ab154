/*
Package config allows the chunkfile command-line tools to be driven by a
configuration file rather than a pile of flags.

It uses gopkg.in/yaml.v3 to parse the configuration file, with root
element Config.

It offers the capacity to retrieve the configuration file path from
different endpoints:
  - CLI flag (-config [path]) default = config.yaml
  - Environment variable (CONFIG_FILE=[path])

Particularities:
 1. If both endpoints are detected, it will use the environment variable.
 2. If no endpoint is explicitly given, it will use the default path
    "./config.yaml"

Below, an example of how to use the package:

	cfgPath, err := config.ParseFlags()
	if err != nil {
		log.Fatal(err)
	}
	cfg, err := config.NewConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
*/
package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

var currentConfig *Config

// Declaration of the configuration type used inside the program.
// Using getters instead of public members to prevent modification of the
// configuration once loaded.

type Config struct {
	stream Stream
}

func (c *Config) Stream() *Stream { return &c.stream }

type Stream struct {
	plainChunkSize uint64
	key            [32]byte
}

func (s *Stream) PlainChunkSize() uint64 { return s.plainChunkSize }
func (s *Stream) Key() [32]byte          { return s.key }

// ValidateConfigPath just makes sure that the path provided is a file
// that can be read.
func ValidateConfigPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindConfig, "resolve config path")
	}
	s, err := os.Stat(abs)
	if err != nil {
		return chunkerr.WrapKind(err, chunkerr.KindConfig, "stat config file")
	}
	if s.IsDir() {
		return chunkerr.NewKind(chunkerr.KindConfig, fmt.Sprintf("'%s' is a directory, not a normal file", path))
	}
	return nil
}

// ParseFlags creates and parses the CLI flags and returns the path to be
// used elsewhere.
func ParseFlags() (string, error) {
	var configPath string

	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	if env := os.Getenv("CONFIG_FILE"); len(env) > 0 {
		configPath = env
	}

	if err := ValidateConfigPath(configPath); err != nil {
		return "", err
	}
	return configPath, nil
}

// NewConfig returns a new decoded Config struct.
func NewConfig(configPath string) (*Config, error) {
	configyml := &ConfigYml{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, chunkerr.WrapKind(err, chunkerr.KindIO, "open config file")
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(&configyml); err != nil {
		return nil, chunkerr.WrapKind(err, chunkerr.KindConfig, "decode config file")
	}

	chunkSize, err := extractSize(configyml.Stream.PlainChunkSizeStr)
	if err != nil {
		return nil, err
	} else if chunkSize == 0 {
		return nil, chunkerr.NewKind(chunkerr.KindConfig, "plain_chunk_size must be positive")
	}

	skey, err := hex.DecodeString(configyml.Stream.KeyHex)
	if err != nil {
		return nil, chunkerr.WrapKind(err, chunkerr.KindConfig, "decode key_hex")
	}
	if len(skey) != 32 {
		return nil, chunkerr.NewKind(chunkerr.KindConfig, "key_hex must decode to exactly 32 bytes")
	}
	var key [32]byte
	copy(key[:], skey)

	cfg := Config{stream: Stream{plainChunkSize: chunkSize, key: key}}
	currentConfig = &cfg
	return currentConfig, nil
}

// GetCurrent gives the current config. This method panics if NewConfig
// has not been called before without error.
func GetCurrent() *Config {
	if currentConfig == nil {
		panic(chunkerr.NewKind(chunkerr.KindConfig, "config not loaded"))
	}
	return currentConfig
}
