package snapshot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"inventory-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []reconcile.Record {
	var a, b reconcile.Record
	a.Set("ComputerName", "PC1")
	a.Set("RAM", "16")
	a.Set("IPAddresses", "10.0.0.1\n10.0.0.2")
	b.Set("ComputerName", "PC2")
	b.Set("Note", "")
	return []reconcile.Record{a, b}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.json": FormatJSON, "b.YAML": FormatYAML, "c.yml": FormatYAML} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("d.csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileRoundTrip(t *testing.T) {
	for _, name := range []string{"batch.json", "batch.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, sample()))

			got, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, sample()[0].Fields(), got[0].Fields())
			assert.Equal(t, sample()[1].Fields(), got[1].Fields())
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `
ComputerName: PC9
CPUCores: 8
Virtual: false
IPAddresses:
  - 10.0.0.9
  - 10.0.0.10
Owner: ~
`
	records, err := Decode(strings.NewReader(input), FormatYAML)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, []string{"ComputerName", "CPUCores", "Virtual", "IPAddresses", "Owner"}, rec.Names())
	assert.Equal(t, "8", rec.Value("CPUCores"))
	assert.Equal(t, "false", rec.Value("Virtual"))
	assert.Equal(t, "10.0.0.9\n10.0.0.10", rec.Value("IPAddresses"))
	assert.Equal(t, "", rec.Value("Owner"))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"YAMLScalarRoot", FormatYAML, "just text"},
		{"YAMLNestedMap", FormatYAML, "ComputerName: PC1\nDisk:\n  size: 1\n"},
		{"YAMLListOfLists", FormatYAML, "- [a, b]\n"},
		{"JSONNested", FormatJSON, `{"ComputerName":"PC1","Disk":{"size":1}}`},
		{"UnknownFormat", Format("toml"), "a = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		records, err := Decode(strings.NewReader("  \n"), format)
		require.NoError(t, err)
		assert.Empty(t, records)
	}
}

func TestEncodeYAMLMultiline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, sample()[:1]))

	out := buf.String()
	assert.Contains(t, out, "IPAddresses: |-")
	assert.Contains(t, out, `RAM: "16"`, "numeric-looking strings stay strings")
	assert.True(t, strings.HasPrefix(out, "- ComputerName: PC1\n"))
}
