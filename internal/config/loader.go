package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultsFileName is the optional per-directory defaults file.
const DefaultsFileName = ".loop.yaml"

// Defaults holds the resolved values from a .loop.yaml file. Flags always
// win over file values; file values win over built-in defaults. Pointer
// fields are nil when the file does not set them.
type Defaults struct {
	Every    *time.Duration
	CountBy  *float64
	Offset   *float64
	OnlyLast *bool
	Summary  *bool
	Shell    []string
}

// defaultsFile is the on-disk shape of .loop.yaml.
type defaultsFile struct {
	Every    string   `yaml:"every"`
	CountBy  *float64 `yaml:"count_by"`
	Offset   *float64 `yaml:"offset"`
	OnlyLast *bool    `yaml:"only_last"`
	Summary  *bool    `yaml:"summary"`
	Shell    string   `yaml:"shell"`
}

// LoadDefaults reads .loop.yaml from the working directory, falling back to
// the home directory. A missing file is not an error and yields empty
// defaults.
func LoadDefaults(cwd string) (*Defaults, error) {
	paths := []string{filepath.Join(cwd, DefaultsFileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultsFileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read defaults file: %w", err)
		}
		return parseDefaults(path, data)
	}

	return &Defaults{}, nil
}

func parseDefaults(path string, data []byte) (*Defaults, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	d := &Defaults{
		CountBy:  file.CountBy,
		Offset:   file.Offset,
		OnlyLast: file.OnlyLast,
		Summary:  file.Summary,
	}

	if file.Every != "" {
		every, err := time.ParseDuration(file.Every)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: invalid every: %w", path, err)
		}
		d.Every = &every
	}

	if file.Shell != "" {
		d.Shell = strings.Fields(file.Shell)
	}

	return d, nil
}

// Apply fills unset fields of cfg from the defaults. Fields the caller has
// already set (from flags) are left alone; the caller passes set reporting
// which flags were given explicitly.
func (d *Defaults) Apply(cfg *Config, set func(flag string) bool) {
	if d.Every != nil && !set("every") {
		cfg.Every = *d.Every
	}
	if d.CountBy != nil && !set("count-by") {
		cfg.CountBy = *d.CountBy
	}
	if d.Offset != nil && !set("offset") {
		cfg.Offset = *d.Offset
	}
	if d.OnlyLast != nil && !set("only-last") {
		cfg.OnlyLast = *d.OnlyLast
	}
	if d.Summary != nil && !set("summary") {
		cfg.Summary = *d.Summary
	}
	if len(d.Shell) > 0 {
		cfg.Shell = d.Shell
	}
}
