package tabular

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const artsCsv = `Gender,Age,S.S.C (GPA),H.S.C (GPA),Department
Female,22,4.33,4.17,Arts
Male,23,5.00,4.83,Arts
Female,21,,3.92,Arts
`

func TestRead(t *testing.T) {
	table, err := Read(strings.NewReader(artsCsv))
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(
		t,
		[]string{"Gender", "Age", "S.S.C (GPA)", "H.S.C (GPA)", "Department"},
		table.ColumnNames(),
	)
	require.Len(t, table.Rows, 3)

	kinds := map[string]Kind{}
	for _, c := range table.Columns {
		kinds[c.Name] = c.Kind
	}
	require.Equal(t, KindString, kinds["Gender"])
	require.Equal(t, KindInt, kinds["Age"])
	// the blank cell must not demote the column to string
	require.Equal(t, KindFloat, kinds["S.S.C (GPA)"])
}

func TestReadErrors(t *testing.T) {
	{
		_, err := Read(strings.NewReader(""))
		require.ErrorIs(t, err, ErrEmpty)
	}
	{
		table, err := Read(strings.NewReader("a,b\n1,2,3\n"))
		require.Error(t, err)
		require.Nil(t, table)
	}
}

func TestHead(t *testing.T) {
	table, err := Read(strings.NewReader(artsCsv))
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, table.Head(2), 2)
	require.Len(t, table.Head(5), 3)
	require.Equal(t, []string{"Female", "22", "4.33", "4.17", "Arts"}, table.Head(1)[0])

	headerOnly, err := Read(strings.NewReader("a,b,c\n"))
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, headerOnly.Head(5), 0)
}

func TestColumn(t *testing.T) {
	table, err := Read(strings.NewReader(artsCsv))
	if err != nil {
		t.Fatal(err)
	}

	gender, err := table.Column("Gender")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"Female", "Male", "Female"}, gender)

	_, err = table.Column("gender")
	require.ErrorIs(t, err, ErrNoColumn)
	require.Contains(t, err.Error(), `"Gender"`)
}

func TestRename(t *testing.T) {
	table, err := Read(strings.NewReader(artsCsv))
	if err != nil {
		t.Fatal(err)
	}

	table.Rename(map[string]string{
		"S.S.C (GPA)":  "SSC_GPA",
		"Not A Column": "ignored",
	})
	require.Equal(
		t,
		[]string{"Gender", "Age", "SSC_GPA", "H.S.C (GPA)", "Department"},
		table.ColumnNames(),
	)
}

func TestFloats(t *testing.T) {
	table, err := Read(strings.NewReader("Attendance,Score\n85%,4.33\n70%,5.00\n,2.5\nabsent,1\n"))
	if err != nil {
		t.Fatal(err)
	}

	attendance, err := table.Floats("Attendance")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 85.0, attendance[0])
	require.Equal(t, 70.0, attendance[1])
	require.True(t, math.IsNaN(attendance[2]))
	require.True(t, math.IsNaN(attendance[3]))

	score, err := table.Floats("Score")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []float64{4.33, 5, 2.5, 1}, score)
}
