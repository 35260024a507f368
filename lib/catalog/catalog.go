// Package catalog names the datasets datapeek knows how to fetch: each
// source maps a short name to a remote csv url and the local path its
// copy is written to.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"datapeek/lib/configutil"
)

var ErrUnknownSource = fmt.Errorf("unknown source")
var ErrNoUrl = fmt.Errorf("source has no url")

// DefaultSource is what bare commands operate on when no source is
// named.
const DefaultSource = "arts_faculty"

type Source struct {
	Name string `json:"name"`
	Url  string `json:"url"`
	Path string `json:"path"`
}

// ResolvePath returns where the source's local copy lives under
// dataDir. An absolute source path wins over dataDir.
func (s Source) ResolvePath(dataDir string) string {
	if filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(dataDir, s.Path)
}

// Defaults returns the built-in sources. student_performance carries no
// url: its csv is distributed by hand, so it can be previewed but not
// fetched.
func Defaults() []Source {
	return []Source{
		{
			Name: "arts_faculty",
			Url:  "https://raw.githubusercontent.com/syahadira/S22A0053/refs/heads/main/arts_faculty_data.csv",
			Path: "arts_faculty_data.csv",
		},
		{
			Name: "student_performance",
			Path: "Students_Performance_data_set.csv",
		},
	}
}

type Config struct {
	Sources []Source `json:"sources"`
}

// Load returns the built-in sources with the named json5 config merged
// over them: a config source with a known name replaces that entry in
// place, new names append in declaration order. A missing config file
// just yields the defaults.
func Load(name string) ([]Source, error) {
	cfg, err := configutil.ReadConfig[Config](name)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	return Merge(Defaults(), cfg.Sources), nil
}

func Merge(base []Source, overrides []Source) []Source {
	out := make([]Source, len(base))
	copy(out, base)

	index := map[string]int{}
	for i, s := range out {
		index[s.Name] = i
	}
	for _, s := range overrides {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

// Find returns the source with the given name.
func Find(sources []Source, name string) (Source, error) {
	for _, s := range sources {
		if s.Name == name {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}
