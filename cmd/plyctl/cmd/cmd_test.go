package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/plyfile/pkg/api"
	"github.com/ssargent/plyfile/pkg/archive"
	"github.com/ssargent/plyfile/pkg/config"
	"github.com/ssargent/plyfile/pkg/di"
	"github.com/ssargent/plyfile/pkg/ply"
)

const squareASCII = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`

func TestMain(m *testing.M) {
	SetContainer(di.NewContainer())
	os.Exit(m.Run())
}

// resetFlags restores every flag of the tree to its default between runs
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs plyctl with a config file and data directory under dir
func executeCommand(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--data-dir", filepath.Join(dir, "data"),
		"--log-level", "error",
	}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSquare(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(squareASCII), 0600))
	return path
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSquare(t, dir, "square.ply")

	t.Run("table", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "info", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Format:   ascii 1.0")
		assert.Contains(t, out, "Rows:     6")
		assert.Contains(t, out, "vertex_indices")
		assert.Contains(t, out, "uchar int")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "info", path, "-o", "json")
		require.NoError(t, err)

		var summary ply.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &summary))
		assert.Equal(t, "ascii", summary.Format)
		require.Len(t, summary.Elements, 2)
		assert.Equal(t, "vertex", summary.Elements[0].Name)
		assert.Equal(t, 4, summary.Elements[0].Rows)
		assert.Equal(t, "uchar", summary.Elements[1].Properties[0].SizeType)
	})

	t.Run("stats", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "info", path, "--stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Vertices: 4")
		assert.Contains(t, out, "Faces:    2")
		assert.Contains(t, out, "Bounds:   (0, 0, 0) - (1, 1, 0)")
		assert.Contains(t, out, "Area:     1")
	})

	t.Run("stats with dangling face index", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.ply")
		text := strings.Replace(squareASCII, "3 0 2 3\n", "3 0 2 7\n", 1)
		require.NoError(t, os.WriteFile(broken, []byte(text), 0600))

		out, _, err := executeCommand(t, dir, "info", broken, "--stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Area:     0.5")
		assert.Contains(t, out, "Problem:  face 1 references vertex 7 of 4")

		out, _, err = executeCommand(t, dir, "info", broken, "--stats", "-o", "json")
		require.NoError(t, err)
		var report struct {
			Stats meshStats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "face 1 references vertex 7 of 4", report.Stats.Problem)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := executeCommand(t, dir, "info", filepath.Join(dir, "nope.ply"))
		require.Error(t, err)
		var perr *ply.Error
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, _, err := executeCommand(t, dir, "info", path, "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeSquare(t, dir, "a.ply")
	b := writeSquare(t, dir, "b.ply")

	t.Run("out dir", func(t *testing.T) {
		outDir := filepath.Join(dir, "converted")
		out, _, err := executeCommand(t, dir, "convert", a, b, "--to", "binary_big_endian", "--out-dir", outDir, "--jobs", "2")
		require.NoError(t, err)

		for _, name := range []string{"a", "b"} {
			target := filepath.Join(outDir, name+".binary_big_endian.ply")
			assert.Contains(t, out, target)

			f, err := ply.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, ply.BinaryBigEndian, f.Format)
			assert.Equal(t, []string{"generated by plyctl"}, f.Comments)
			assert.Equal(t, 4, f.Element("vertex").Len())
		}
	})

	t.Run("single output defaults to writer format", func(t *testing.T) {
		target := filepath.Join(dir, "single.ply")
		_, _, err := executeCommand(t, dir, "convert", a, "--output", target)
		require.NoError(t, err)

		f, err := ply.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, ply.BinaryLittleEndian, f.Format)
	})

	t.Run("round trip back to ascii", func(t *testing.T) {
		binary := filepath.Join(dir, "square.bin.ply")
		text := filepath.Join(dir, "square.txt.ply")
		_, _, err := executeCommand(t, dir, "convert", a, "--to", "binary_little_endian", "--output", binary)
		require.NoError(t, err)
		_, _, err = executeCommand(t, dir, "convert", binary, "--to", "ascii", "--output", text)
		require.NoError(t, err)

		data, err := os.ReadFile(text)
		require.NoError(t, err)
		assert.Contains(t, string(data), "comment generated by plyctl\n")
		assert.Contains(t, string(data), "end_header\n0 0 0\n1 0 0\n1 1 0\n0 1 0\n3 0 1 2\n3 0 2 3\n")
	})

	t.Run("same base name into one out dir", func(t *testing.T) {
		other := filepath.Join(dir, "other")
		require.NoError(t, os.MkdirAll(other, 0750))
		twin := writeSquare(t, other, "a.ply")
		outDir := filepath.Join(dir, "clash")

		_, _, err := executeCommand(t, dir, "convert", a, twin, "--to", "ascii", "--out-dir", outDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "would both be written to")
		assert.NoFileExists(t, filepath.Join(outDir, "a.ascii.ply"))
	})

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"unknown encoding", []string{"convert", a, "--to", "binary"}, "unknown encoding"},
		{"output with many inputs", []string{"convert", a, b, "--output", "x.ply"}, "exactly one input"},
		{"output and out dir", []string{"convert", a, "--output", "x.ply", "--out-dir", "d"}, "mutually exclusive"},
		{"no inputs", []string{"convert"}, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, dir, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeSquare(t, dir, "good.ply")
	bad := filepath.Join(dir, "bad.ply")
	require.NoError(t, os.WriteFile(bad, []byte("ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nend_header\n1\n"), 0600))

	t.Run("all valid", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "validate", good)
		require.NoError(t, err)
		assert.Contains(t, out, "OK    "+good+" (6 rows)")
	})

	t.Run("one invalid", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "validate", good, bad, "--jobs", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 files are invalid")
		assert.Contains(t, out, "OK    "+good)
		assert.Contains(t, out, "FAIL  "+bad)
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "validate", good, bad, "-o", "json")
		require.Error(t, err)

		var results []validation
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.True(t, results[0].Valid)
		assert.False(t, results[1].Valid)
		assert.NotEmpty(t, results[1].Error)
	})
}

func TestArchiveCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeSquare(t, dir, "square.ply")

	out, _, err := executeCommand(t, dir, "put", path, "-o", "json")
	require.NoError(t, err)
	var entry archive.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	require.NotEmpty(t, entry.ID)
	assert.Equal(t, len(squareASCII), entry.Size)

	out, _, err = executeCommand(t, dir, "list", "-o", "json")
	require.NoError(t, err)
	var entries []archive.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)

	out, _, err = executeCommand(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, entry.ID)
	assert.Contains(t, out, "vertex(4),face(2)")

	out, _, err = executeCommand(t, dir, "get", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, squareASCII, out)

	target := filepath.Join(dir, "out.ply")
	_, _, err = executeCommand(t, dir, "get", entry.ID, "--to", "binary_big_endian", "--output", target)
	require.NoError(t, err)
	f, err := ply.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, ply.BinaryBigEndian, f.Format)

	out, _, err = executeCommand(t, dir, "delete", entry.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document")

	_, _, err = executeCommand(t, dir, "get", entry.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNotFound)

	out, _, err = executeCommand(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents archived")

	_, _, err = executeCommand(t, dir, "delete", "not-an-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrInvalidID)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	out, _, err := executeCommand(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+configPath)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.NotEqual(t, "auto", cfg.Security.APIKey)

	out, _, err = executeCommand(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, _, err = executeCommand(t, dir, "init", "--force")
	require.NoError(t, err)
	again, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
}

type recordingStarter struct {
	config api.ServerConfig
	calls  int
}

func (r *recordingStarter) StartServer(_ context.Context, _ api.DocumentStore, config api.ServerConfig, _ ...api.ServerOption) error {
	r.calls++
	r.config = config
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func TestServeCommand(t *testing.T) {
	previous := container
	t.Cleanup(func() { SetContainer(previous) })

	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(&recordingFactory{starter: starter})
	SetContainer(c)

	dir := t.TempDir()

	t.Run("flags override config", func(t *testing.T) {
		_, _, err := executeCommand(t, dir, "serve", "--port", "9000", "--api-key", "secret")
		require.NoError(t, err)
		assert.Equal(t, 1, starter.calls)
		assert.Equal(t, 9000, starter.config.Port)
		assert.Equal(t, "127.0.0.1", starter.config.Bind)
		assert.Equal(t, "secret", starter.config.APIKey)
	})

	t.Run("temporary key without config", func(t *testing.T) {
		out, _, err := executeCommand(t, dir, "serve")
		require.NoError(t, err)
		assert.Contains(t, out, "temporary one")
		assert.Equal(t, 8080, starter.config.Port)
		assert.Len(t, starter.config.APIKey, 64)
	})

	t.Run("configured key", func(t *testing.T) {
		cfg, err := config.BootstrapConfig(filepath.Join(dir, "config.yaml"), filepath.Join(dir, "data"))
		require.NoError(t, err)

		out, _, err := executeCommand(t, dir, "serve", "--bind", "0.0.0.0")
		require.NoError(t, err)
		assert.NotContains(t, out, "temporary one")
		assert.Equal(t, cfg.Security.APIKey, starter.config.APIKey)
		assert.Equal(t, "0.0.0.0", starter.config.Bind)
	})
}
