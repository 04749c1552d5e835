// Package config provides the configuration loader for xs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/xs/internal/build"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load walks up from cwd to the nearest xs.yaml and resolves it into settings.
// When no file is found the defaults are returned, rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	configPath, found := findConfiguration(cwd)
	if !found {
		settings := domain.DefaultSettings(build.Target)
		settings.CacheDir = filepath.Join(cwd, domain.DefaultCachePath())
		return &settings, nil
	}

	var file Configfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("unsupported version %q in %s, reading it as version %s",
			file.Version, domain.ConfigFileName, supportedVersion))
	}

	settings, err := toSettings(filepath.Dir(configPath), &file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return settings, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

// toSettings overlays the file on the defaults.
func toSettings(configDir string, file *Configfile) (*domain.Settings, error) {
	s := domain.DefaultSettings(build.Target)
	s.CacheDir = filepath.Join(configDir, domain.DefaultCachePath())

	if file.Endpoint != "" {
		u, err := url.Parse(file.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, zerr.With(invalid("endpoint must be an absolute http(s) URL"), "endpoint", file.Endpoint)
		}
		s.Endpoint = strings.TrimSuffix(file.Endpoint, "/")
	}
	if file.Target != "" {
		s.Target = file.Target
	}
	if file.LoaderPath != "" {
		s.LoaderPath = "/" + strings.TrimPrefix(file.LoaderPath, "/")
	}

	mode, err := parseLocalDev(string(file.LocalDev))
	if err != nil {
		return nil, err
	}
	s.LocalDev = mode

	if file.CacheDir != "" {
		s.CacheDir = resolvePath(configDir, file.CacheDir)
	}
	switch backend := domain.CacheBackend(file.CacheBackend); backend {
	case "":
	case domain.CacheBackendDisk, domain.CacheBackendMemory, domain.CacheBackendDisabled:
		s.CacheBackend = backend
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCacheBackend, file.CacheBackend)
	}
	s.CompressCache = file.CompressCache

	if len(file.Runtime) > 0 {
		s.Runtime = file.Runtime
	}

	switch {
	case file.Parallelism < 0:
		return nil, zerr.With(invalid("parallelism must not be negative"), "parallelism", file.Parallelism)
	case file.Parallelism > 0:
		s.Parallelism = file.Parallelism
	}

	if s.HTTPTimeout, err = parseDuration("http_timeout", file.HTTPTimeout, 0); err != nil {
		return nil, err
	}
	if s.DefaultMaxAge, err = parseDuration("default_max_age", file.DefaultMaxAge, domain.DefaultMaxAge); err != nil {
		return nil, err
	}

	s.SerializeSameKey = file.SerializeSameKey
	if file.ImportMapFile != "" {
		s.ImportMapFile = resolvePath(configDir, file.ImportMapFile)
	}
	s.CredentialHeaders = file.Credentials.Headers

	return &s, nil
}

func parseLocalDev(raw string) (domain.LocalDevMode, error) {
	switch strings.ToLower(raw) {
	case "", string(domain.LocalDevAuto):
		return domain.LocalDevAuto, nil
	case "true", "on", "yes":
		return domain.LocalDevOn, nil
	case "false", "off", "no":
		return domain.LocalDevOff, nil
	default:
		return "", zerr.With(invalid("local_dev must be auto, true or false"), "local_dev", raw)
	}
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, zerr.With(invalid(field+" must be a non-negative duration"), field, raw)
	}
	return d, nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, reason)
}

// resolvePath resolves p against the directory of the config file.
func resolvePath(configDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(configDir, p))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigReadFailed, err), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, parseErr), "path", configPath)
	}

	return nil
}
