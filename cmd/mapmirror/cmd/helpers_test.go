package cmd

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/config"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

type fakeSecrets struct {
	value string
	err   error
}

func (f fakeSecrets) GetSecretJSON(_ context.Context, _ string, v any) error {
	if f.err != nil {
		return f.err
	}
	creds := v.(*storageCredentials)
	creds.AccessKeyID = "AKID"
	creds.SecretAccessKey = f.value
	return nil
}

func TestFetchCredentials(t *testing.T) {
	ak, sk, err := fetchCredentials(context.Background(), fakeSecrets{value: "SECRET"}, "mapmirror/cos")
	require.NoError(t, err)
	assert.Equal(t, "AKID", ak)
	assert.Equal(t, "SECRET", sk)

	_, _, err = fetchCredentials(context.Background(), fakeSecrets{}, "mapmirror/cos")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))

	_, _, err = fetchCredentials(context.Background(), fakeSecrets{err: fmt.Errorf("denied")}, "mapmirror/cos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() { logFormat = "text" })

	for _, format := range []string{"text", "json"} {
		logFormat = format
		var buf bytes.Buffer
		logger, err := newLogger(&buf)
		require.NoError(t, err)
		logger.Info("hello", "k", "v")
		assert.Contains(t, buf.String(), "hello")
	}

	logFormat = "xml"
	_, err := newLogger(&bytes.Buffer{})
	require.Error(t, err)
}

func TestBuildStore_LocalUnlessUploading(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.LocalDir = t.TempDir()
	logger, err := newLogger(&bytes.Buffer{})
	require.NoError(t, err)

	objects, err := buildStore(context.Background(), cfg, logger, false)
	require.NoError(t, err)
	assert.IsType(t, &store.Local{}, objects)

	cfg.Storage.Upload = true
	cfg.Storage.Bucket = "maps"
	objects, err = buildStore(context.Background(), cfg, logger, true)
	require.NoError(t, err)
	assert.IsType(t, &store.Local{}, objects)
}

func TestSummaries(t *testing.T) {
	s := syncSummary(&mirrortypes.Result{
		RunID:       "run-1",
		State:       mirrortypes.StateDone,
		Source:      "snapshot",
		Committed:   2,
		FetchFailed: 1,
		Bytes:       2048,
	})
	assert.Contains(t, s, "run-1")
	assert.Contains(t, s, "snapshot")
	assert.Contains(t, s, "2.0 kB")
	assert.Contains(t, s, "1 download")

	c := cleanupSummary(&mirrortypes.CleanupResult{DryRun: true, Stale: []string{"old_00000000.map"}})
	assert.Contains(t, c, "dry run")
	assert.Contains(t, c, "old_00000000.map")
	assert.NotContains(t, c, "deleted")

	assert.Empty(t, syncSummary(nil))
}

func TestSyncCommand_LocalRun(t *testing.T) {
	t.Setenv("UPLOAD", "")
	t.Setenv("MAPMIRROR_CATALOG_DIR", "")

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(src, 0o755))

	data := []byte("tiny map")
	good := fmt.Sprintf("tiny_%08x.map", crc32.ChecksumIEEE(data))
	require.NoError(t, os.WriteFile(filepath.Join(src, good), data, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken_00000000.map"), data, 0o600))

	cfgPath := filepath.Join(dir, "mapmirror.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
catalog:
  dir: %s
storage:
  local_dir: %s
sync:
  spool_dir: %s
render:
  time_zone: UTC
`, src, out, filepath.Join(dir, "spool"))), 0o600))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"sync", "--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		configPath = ""
	})

	require.NoError(t, rootCmd.Execute())

	assert.FileExists(t, filepath.Join(out, good))
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "maps.json"))
	assert.NoFileExists(t, filepath.Join(out, "broken_00000000.map"))
	assert.Contains(t, stdout.String(), good)
	assert.Contains(t, stdout.String(), "done")
}
