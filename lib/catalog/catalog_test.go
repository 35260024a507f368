package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingConfig(t *testing.T) {
	sources, err := Load(filepath.Join(t.TempDir(), "datapeek.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Defaults(), sources)
}

func TestLoadMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datapeek.json5")
	err := os.WriteFile(path, []byte(`{
	sources: [
		{
			name: "arts_faculty",
			url: "https://mirror.example.com/arts_faculty_data.csv",
			path: "arts_faculty_data.csv",
		},
		{
			name: "attendance",
			url: "https://example.com/attendance.csv",
			path: "attendance.csv",
		},
	],
}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	sources, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, sources, 3)

	arts, err := Find(sources, "arts_faculty")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "https://mirror.example.com/arts_faculty_data.csv", arts.Url)

	// overriding keeps the declaration position, new sources append
	require.Equal(t, "arts_faculty", sources[0].Name)
	require.Equal(t, "student_performance", sources[1].Name)
	require.Equal(t, "attendance", sources[2].Name)
}

func TestFind(t *testing.T) {
	_, err := Find(Defaults(), "nope")
	require.ErrorIs(t, err, ErrUnknownSource)

	s, err := Find(Defaults(), DefaultSource)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "arts_faculty_data.csv", s.Path)
}

func TestResolvePath(t *testing.T) {
	s := Source{Name: "x", Path: "x.csv"}
	require.Equal(t, filepath.Join("data", "x.csv"), s.ResolvePath("data"))
	require.Equal(t, "x.csv", s.ResolvePath(""))

	abs := Source{Name: "x", Path: "/var/data/x.csv"}
	require.Equal(t, "/var/data/x.csv", abs.ResolvePath("data"))
}

func TestSourceName(t *testing.T) {
	require.Equal(t, "arts_faculty_data", sourceName("arts_faculty_data.csv"))
	require.Equal(t, "students_performance_2024", sourceName("Students Performance-2024.CSV"))
	require.Equal(t, "", sourceName(".csv"))
}
