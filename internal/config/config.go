// Package config loads batch conversion manifests
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dyuri/fenixconv/internal/binary"
)

// Job is one conversion: read Input, write Output as Format
type Job struct {
	Input  string
	Output string
	Format binary.Format
}

// Manifest is a list of conversion jobs
type Manifest struct {
	Overwrite bool
	Jobs      []Job
}

type fileJob struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type fileManifest struct {
	Overwrite bool      `toml:"overwrite"`
	Jobs      []fileJob `toml:"job"`
}

// LoadManifest reads a manifest file. Relative job paths are resolved
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	var raw fileManifest
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	m, err := build(raw, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolve(filepath.Dir(path))
	return m, nil
}

// ParseManifest reads a manifest from r. Job paths are kept as written.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var raw fileManifest
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileManifest, meta toml.MetaData) (*Manifest, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	m := &Manifest{Overwrite: raw.Overwrite}
	for i, j := range raw.Jobs {
		job := Job{
			Input:  strings.TrimSpace(j.Input),
			Output: strings.TrimSpace(j.Output),
		}
		if job.Input == "" {
			return nil, fmt.Errorf("job %d: missing input", i+1)
		}
		if job.Output == "" {
			return nil, fmt.Errorf("job %d: missing output", i+1)
		}

		name := strings.TrimSpace(j.Format)
		if name == "" {
			name = filepath.Ext(job.Output)
		}
		f, err := binary.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		job.Format = f
		m.Jobs = append(m.Jobs, job)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("no jobs defined")
	}
	return m, nil
}

func (m *Manifest) resolve(dir string) {
	for i := range m.Jobs {
		if !filepath.IsAbs(m.Jobs[i].Input) {
			m.Jobs[i].Input = filepath.Join(dir, m.Jobs[i].Input)
		}
		if !filepath.IsAbs(m.Jobs[i].Output) {
			m.Jobs[i].Output = filepath.Join(dir, m.Jobs[i].Output)
		}
	}
}
