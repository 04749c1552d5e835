package config

import "gopkg.in/yaml.v3"

// Configfile represents the structure of the xs.yaml configuration file.
type Configfile struct {
	Version          string         `yaml:"version"`
	Endpoint         string         `yaml:"endpoint"`
	Target           string         `yaml:"target"`
	LoaderPath       string         `yaml:"loader_path"`
	LocalDev         LocalDevDTO    `yaml:"local_dev"`
	CacheDir         string         `yaml:"cache_dir"`
	CacheBackend     string         `yaml:"cache_backend"`
	CompressCache    bool           `yaml:"compress_cache"`
	Runtime          []string       `yaml:"runtime"`
	Parallelism      int            `yaml:"parallelism"`
	HTTPTimeout      string         `yaml:"http_timeout"`
	DefaultMaxAge    string         `yaml:"default_max_age"`
	SerializeSameKey bool           `yaml:"serialize_same_key"`
	ImportMapFile    string         `yaml:"import_map_file"`
	Credentials      CredentialsDTO `yaml:"credentials"`
}

// CredentialsDTO holds what is attached to fetches of elements with the credentials attribute.
type CredentialsDTO struct {
	Headers map[string]string `yaml:"headers"`
}

// LocalDevDTO accepts auto, on/off and YAML booleans.
type LocalDevDTO string

// UnmarshalYAML keeps the raw scalar so booleans and words decode alike.
func (l *LocalDevDTO) UnmarshalYAML(value *yaml.Node) error {
	*l = LocalDevDTO(value.Value)
	return nil
}
