/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the gateway configuration.
//
// The main configuration file is read from the path given by --config or, when the flag is
// absent, by the SIDETREE_GATEWAY_CONFIG_FILE_PATH environment variable. The protocol versioning
// table is read the same way from --versions or SIDETREE_GATEWAY_VERSIONING_CONFIG_FILE_PATH.
// Both files are YAML (JSON is accepted as a subset). Command-line flags override file values.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/protocolversion"
)

const (
	// EnvConfigFilePath names the environment variable holding the configuration file path.
	EnvConfigFilePath = "SIDETREE_GATEWAY_CONFIG_FILE_PATH"

	// EnvVersioningConfigFilePath names the environment variable holding the versioning file path.
	EnvVersioningConfigFilePath = "SIDETREE_GATEWAY_VERSIONING_CONFIG_FILE_PATH"
)

// CAS types.
const (
	CASTypeLocal = "local"
	CASTypeIPFS  = "ipfs"
)

const sha2_256 = 18

// Config is the gateway configuration.
type Config struct {
	// Host is the interface the REST API listens on.
	Host string `yaml:"host"`

	// Port is the REST API port.
	Port int `yaml:"port"`

	// BasePath prefixes every REST route, e.g. /sidetree/v1.
	BasePath string `yaml:"basePath"`

	// Namespace is the DID method namespace, e.g. did:sidetree.
	Namespace string `yaml:"namespace"`

	// DataDir holds the operation queue, ledger and local CAS databases. Everything is kept in
	// memory when empty.
	DataDir string `yaml:"dataDir"`

	// LogSpec is the log level spec, e.g. sidetree-gateway-processor=debug:info.
	LogSpec string `yaml:"logSpec"`

	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool `yaml:"metricsEnabled"`

	CAS      CASConfig      `yaml:"cas"`
	Batch    BatchConfig    `yaml:"batch"`
	Resolver ResolverConfig `yaml:"resolver"`
	Observer ObserverConfig `yaml:"observer"`
}

// CASConfig configures the content addressable store.
type CASConfig struct {
	// Type is local or ipfs.
	Type string `yaml:"type"`

	// Endpoint is the IPFS HTTP API endpoint.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single CAS request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after a failed CAS request.
	MaxRetries int `yaml:"maxRetries"`

	// RequireAtStartup fails startup when the IPFS node can't be reached. Otherwise it is only logged.
	RequireAtStartup bool `yaml:"requireAtStartup"`
}

// BatchConfig configures the batch writer.
type BatchConfig struct {
	// MaxOperations caps the batch size below the protocol's maximum operation count. Zero means
	// the protocol maximum.
	MaxOperations uint `yaml:"maxOperations"`

	// Interval is the batch timeout after which a partial batch is written.
	Interval time.Duration `yaml:"interval"`

	// WriteTimeout bounds writing one batch to CAS and anchoring it.
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// ResolverConfig configures resolution.
type ResolverConfig struct {
	// CacheSize is the number of resolved documents kept in memory.
	CacheSize int `yaml:"cacheSize"`

	// Timeout bounds a single resolution request.
	Timeout time.Duration `yaml:"timeout"`

	// CommitmentCheck rejects updates, recoveries and deactivations whose reveal value doesn't
	// match the current commitment of the anchored document. Enabled by default.
	CommitmentCheck bool `yaml:"commitmentCheck"`
}

// ObserverConfig configures the anchor observer.
type ObserverConfig struct {
	// RetryInterval is how often the observer polls the ledger and retries failed anchors.
	RetryInterval time.Duration `yaml:"retryInterval"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           3000,
		BasePath:       "",
		Namespace:      "did:sidetree",
		LogSpec:        "info",
		MetricsEnabled: true,
		CAS: CASConfig{
			Type:       CASTypeLocal,
			Endpoint:   "http://localhost:5001",
			Timeout:    10 * time.Second,
			MaxRetries: 3,
		},
		Batch: BatchConfig{
			Interval:     10 * time.Second,
			WriteTimeout: time.Minute,
		},
		Resolver: ResolverConfig{
			CacheSize:       10000,
			Timeout:         30 * time.Second,
			CommitmentCheck: true,
		},
		Observer: ObserverConfig{
			RetryInterval: 10 * time.Second,
		},
	}
}

// DefaultVersions returns the versioning table used when no versioning file is configured.
func DefaultVersions() []protocolversion.Entry {
	return []protocolversion.Entry{
		{
			Version: protocolversion.V1_0,
			Protocol: protocol.Protocol{
				StartingAnchorPoint:    0,
				MultihashAlgorithms:    []uint{sha2_256},
				MaxOperationCount:      1000,
				MaxOperationSize:       2500,
				MaxOperationHashLength: 100,
				MaxDeltaSize:           1700,
				MaxBatchFileSize:       4000000,
				CompressionAlgorithm:   "GZIP",
				Patches: []string{
					"replace", "add-public-keys", "remove-public-keys",
					"add-services", "remove-services", "ietf-json-patch",
				},
				SignatureAlgorithms: []string{"EdDSA", "ES256", "ES256K"},
				KeyAlgorithms:       []string{"Ed25519", "P-256", "secp256k1"},
			},
		},
	}
}

// Address returns the host:port the REST API listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}

	if c.Namespace == "" {
		return errors.New("namespace is required")
	}

	switch c.CAS.Type {
	case CASTypeLocal:
	case CASTypeIPFS:
		if c.CAS.Endpoint == "" {
			return errors.New("CAS endpoint is required for CAS type ipfs")
		}
	default:
		return errors.Errorf("unsupported CAS type: %s", c.CAS.Type)
	}

	if c.CAS.Timeout <= 0 {
		return errors.New("CAS timeout must be positive")
	}

	if c.CAS.MaxRetries < 0 {
		return errors.New("CAS max retries must not be negative")
	}

	if c.Batch.Interval <= 0 {
		return errors.New("batch interval must be positive")
	}

	if c.Resolver.CacheSize <= 0 {
		return errors.New("resolver cache size must be positive")
	}

	if c.Resolver.Timeout <= 0 {
		return errors.New("resolver timeout must be positive")
	}

	if _, err := log.ParseSpec(c.LogSpec); err != nil {
		return errors.Wrap(err, "invalid log spec")
	}

	return nil
}

// ApplyLogSpec sets the log levels from LogSpec.
func (c *Config) ApplyLogSpec() error {
	return log.SetSpec(c.LogSpec)
}

// Parameters is the parsed command line together with the loaded files.
type Parameters struct {
	Config   *Config
	Versions []protocolversion.Entry
}

// Load parses the command-line arguments (without the program name), loads the configuration
// and versioning files and applies the flag overrides. pflag.ErrHelp is returned when help was
// requested.
func Load(name string, args []string, output io.Writer) (*Parameters, error) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(output)

	configPath := flags.String("config", "", "path of the configuration file (env "+EnvConfigFilePath+")")
	versionsPath := flags.String("versions", "",
		"path of the protocol versioning file (env "+EnvVersioningConfigFilePath+")")
	host := flags.String("host", "", "interface the REST API listens on")
	port := flags.Int("port", 0, "REST API port")
	namespace := flags.String("namespace", "", "DID method namespace")
	casType := flags.String("cas-type", "", "content addressable store: local or ipfs")
	casEndpoint := flags.String("cas-endpoint", "", "IPFS HTTP API endpoint")
	dataDir := flags.String("data-dir", "", "directory of the databases; in memory when empty")
	logSpec := flags.String("log-spec", "", "log level spec, e.g. sidetree-gateway-processor=debug:info")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if *configPath == "" {
		*configPath = os.Getenv(EnvConfigFilePath)
	}

	if *versionsPath == "" {
		*versionsPath = os.Getenv(EnvVersioningConfigFilePath)
	}

	cfg := Default()

	if *configPath != "" {
		var err error

		cfg, err = LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
	}

	overrideString(flags, "host", &cfg.Host, *host)
	overrideString(flags, "namespace", &cfg.Namespace, *namespace)
	overrideString(flags, "cas-type", &cfg.CAS.Type, *casType)
	overrideString(flags, "cas-endpoint", &cfg.CAS.Endpoint, *casEndpoint)
	overrideString(flags, "data-dir", &cfg.DataDir, *dataDir)
	overrideString(flags, "log-spec", &cfg.LogSpec, *logSpec)

	if flags.Changed("port") {
		cfg.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	versions := DefaultVersions()

	if *versionsPath != "" {
		var err error

		versions, err = LoadVersions(*versionsPath)
		if err != nil {
			return nil, err
		}
	}

	return &Parameters{Config: cfg, Versions: versions}, nil
}

// LoadFile loads the configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := decodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "load configuration file %s", path)
	}

	return cfg, nil
}

// LoadVersions loads the protocol versioning table.
func LoadVersions(path string) ([]protocolversion.Entry, error) {
	var versions []protocolversion.Entry

	if err := decodeFile(path, &versions); err != nil {
		return nil, errors.Wrapf(err, "load versioning file %s", path)
	}

	if len(versions) == 0 {
		return nil, errors.Errorf("versioning file %s contains no versions", path)
	}

	return versions, nil
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func overrideString(flags *pflag.FlagSet, name string, target *string, value string) {
	if flags.Changed(name) {
		*target = value
	}
}
