package cli

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

const (
	hashMaphash = "maphash"
	hashSiphash = "siphash"
)

// Config holds all configuration options.
type Config struct {
	Capacity     int    `json:"capacity,omitempty"`
	Hash         string `json:"hash,omitempty"`
	SipKey       string `json:"sip_key,omitempty"`       //nolint:tagliatelle // snake_case for config file
	HistoryFile  string `json:"history_file,omitempty"`  //nolint:tagliatelle // snake_case for config file
	SnapshotFile string `json:"snapshot_file,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".chainmap.json"

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Hash:         hashMaphash,
		SnapshotFile: "chainmap.snapshot.json",
	}
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/chainmap/config.json, falling
// back to ~/.config/chainmap/config.json. Empty if neither can be resolved.
func getGlobalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "chainmap", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "chainmap", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config (.chainmap.json in workDir) or the explicit configPath,
// which must exist.
//
// Flag overrides are applied by the caller.
func LoadConfig(workDir, configPath string, env map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if globalPath := getGlobalConfigPath(env); globalPath != "" {
		globalCfg, _, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		cfg = mergeConfig(cfg, globalCfg)
	}

	path, mustExist := filepath.Join(workDir, ConfigFileName), false
	if configPath != "" {
		path, mustExist = configPath, true
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
	}

	projectCfg, _, err := loadConfigFile(path, mustExist)
	if err != nil {
		return Config{}, err
	}

	cfg = mergeConfig(cfg, projectCfg)

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errConfigInvalid, err)
	}

	return cfg, nil
}

// loadConfigFile loads a config file. A missing file is only an error when
// mustExist is set. Returns whether the file was loaded.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", errConfigFileRead, path)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

// mergeConfig overlays the non-zero fields of override on base.
func mergeConfig(base, override Config) Config {
	if override.Capacity != 0 {
		base.Capacity = override.Capacity
	}

	if override.Hash != "" {
		base.Hash = override.Hash
	}

	if override.SipKey != "" {
		base.SipKey = override.SipKey
	}

	if override.HistoryFile != "" {
		base.HistoryFile = override.HistoryFile
	}

	if override.SnapshotFile != "" {
		base.SnapshotFile = override.SnapshotFile
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.Capacity < 0 {
		return errNegativeCapacity
	}

	switch cfg.Hash {
	case hashMaphash, hashSiphash:
	default:
		return fmt.Errorf("%w: %q", errUnknownHash, cfg.Hash)
	}

	if cfg.SipKey != "" {
		if _, _, err := parseSipKey(cfg.SipKey); err != nil {
			return err
		}
	}

	return nil
}

// parseSipKey decodes a 128-bit SipHash key given as 32 hex characters.
// The empty key is all zeros.
func parseSipKey(s string) (uint64, uint64, error) {
	if s == "" {
		return 0, 0, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 16 {
		return 0, 0, errInvalidSipKey
	}

	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]), nil
}
