// Package config loads the engine's TOML configuration file, a small
// key/value settings document, using BurntSushi/toml.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"minidb/internal/dberrors"
)

// Config holds the settings minidb.toml may override. Settings absent from
// the file keep their Default values; a setting present in the file is used
// as written, even when it is zero or false.
type Config struct {
	// DefaultVarcharLimit bounds a VARCHAR column declared without an
	// explicit length. The grammar requires VARCHAR(n), so this only
	// matters for tooling built atop this package that synthesizes column
	// definitions; the parser itself always supplies a length.
	DefaultVarcharLimit int `toml:"default_varchar_limit"`

	// Fsync controls whether heap, directory, tombstone, index, and catalog
	// writes call Sync before returning. Disabling it trades durability for
	// throughput; the default is true.
	Fsync bool `toml:"fsync"`
}

// Default returns the configuration used when no minidb.toml is present.
func Default() Config {
	return Config{DefaultVarcharLimit: 255, Fsync: true}
}

// Load reads path, returning Default() unchanged if the file does not
// exist. A present-but-malformed file is reported as an IOError.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &dberrors.IOError{Op: "stat", Path: path, Err: err}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, &dberrors.IOError{Op: "parse", Path: path, Err: err}
	}
	return cfg, nil
}
