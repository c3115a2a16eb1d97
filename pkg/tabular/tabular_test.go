package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "quoted delimiter and escaped quote",
			input: `A,"B,C","D""E"`,
			want:  [][]string{{"A", "B,C", `D"E`}},
		},
		{
			name:  "LF rows",
			input: "label,6C connections\nA,3A\n",
			want:  [][]string{{"label", "6C connections"}, {"A", "3A"}},
		},
		{
			name:  "CRLF rows",
			input: "a,b\r\nc,d\r\n",
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "lone CR",
			input: "a\rb",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "empty lines skipped",
			input: "a\n\n\r\n\nb\n",
			want:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "empty fields kept",
			input: ",x,\n",
			want:  [][]string{{"", "x", ""}},
		},
		{
			name:  "empty quoted field is a row",
			input: "\"\"\n",
			want:  [][]string{{""}},
		},
		{
			name:  "line break inside quotes",
			input: "\"3A,\n4B\",x\ny",
			want:  [][]string{{"3A,\n4B", "x"}, {"y"}},
		},
		{
			name:  "unterminated quote runs to end",
			input: "a,\"b,c\nd,e",
			want:  [][]string{{"a", "b,c\nd,e"}},
		},
		{
			name:  "whitespace preserved",
			input: " a , b ",
			want:  [][]string{{" a ", " b "}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Module 3_links.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFLabel,6C Connections\r\nA,\"1A, 2B\"\r\n"), 0o644))

	rows, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Label", "6C Connections"}, {"A", "1A, 2B"}}, rows)

	_, err = ParseFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestColumn(t *testing.T) {
	header := []string{"Concept", " LABEL ", "6c Connections", "label"}

	assert.Equal(t, 1, Column(header, "label"))
	assert.Equal(t, 2, Column(header, "6C connections"))
	assert.Equal(t, -1, Column(header, "notes"))
	assert.Equal(t, -1, Column(nil, "label"))
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}

	assert.Equal(t, "b", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 2))
	assert.Equal(t, "", Cell(row, -1))
}
