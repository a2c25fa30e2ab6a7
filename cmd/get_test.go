package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/pkg/config"
	apperrors "github.com/killallgit/r2get/pkg/errors"
	"github.com/killallgit/r2get/pkg/logging"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	original := config.DefaultConfigPath
	config.DefaultConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
	config.Reset()
	t.Cleanup(func() {
		config.DefaultConfigPath = original
		config.Reset()
	})
}

func executeGet(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"get"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestGetRejectsBadInputBeforeNetwork(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	tests := []struct {
		name      string
		args      []string
		wantClass apperrors.Class
		contains  string
	}{
		{
			name:      "zero retries",
			args:      []string{"-r", "0", "-D", dir, "Huvitaja"},
			wantClass: apperrors.ClassUsage,
			contains:  "retry",
		},
		{
			name:      "impossible date",
			args:      []string{"-d", "2015-02-30", "-D", dir, "Huvitaja"},
			wantClass: apperrors.ClassUsage,
			contains:  "date",
		},
		{
			name:      "blank show name",
			args:      []string{"-D", dir, "   "},
			wantClass: apperrors.ClassUsage,
			contains:  "show name cannot be empty",
		},
		{
			name:      "missing mp3 directory",
			args:      []string{"-D", dir, "--mp3-dir", filepath.Join(dir, "nope"), "Huvitaja"},
			wantClass: apperrors.ClassUsage,
			contains:  "does not exist",
		},
		{
			name:      "ogg directory is a file",
			args:      []string{"-D", dir, "--ogg-dir", notADir, "Huvitaja"},
			wantClass: apperrors.ClassUsage,
			contains:  "is not a directory",
		},
		{
			name:      "every output disabled",
			args:      []string{"-D", "", "Huvitaja"},
			wantClass: apperrors.ClassUsage,
			contains:  "no output directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)

			_, err := executeGet(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantClass, apperrors.ClassOf(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGetRequiresShowArgument(t *testing.T) {
	isolateConfig(t)

	_, err := executeGet(t)
	assert.Error(t, err)
}

func TestGetExplicitConfigMustExist(t *testing.T) {
	isolateConfig(t)

	_, err := executeGet(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "Huvitaja")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetConfigFileRetriesValidated(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download:\n  retries: 0\n"), 0o644))

	_, err := executeGet(t, "--config", path, "Huvitaja")
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassUsage, apperrors.ClassOf(err))
}

func TestGetFlagsRegistered(t *testing.T) {
	getCmd, _, err := NewRootCmd().Find([]string{"get"})
	require.NoError(t, err)

	shorthands := map[string]string{
		"date":         "d",
		"skip":         "s",
		"quick-test":   "q",
		"partial-name": "p",
		"retry":        "r",
		"mp4-dir":      "D",
	}
	for name, short := range shorthands {
		flag := getCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}
	assert.NotNil(t, getCmd.Flags().Lookup("mp3-dir"))
	assert.NotNil(t, getCmd.Flags().Lookup("ogg-dir"))
}

func TestGatherOutputs(t *testing.T) {
	spec := gatherOutputs(config.OutputConfig{MP4Dir: ".", OggDir: "/ogg"})
	assert.Equal(t, models.OutputSpec{models.FormatMP4: ".", models.FormatOgg: "/ogg"}, spec)
	assert.Equal(t, []models.FormatTag{models.FormatMP4, models.FormatOgg}, spec.Formats())

	assert.Empty(t, gatherOutputs(config.OutputConfig{}))
}

func TestValidateOutputDirsCleansUpQuietly(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	require.NoError(t, validateOutputDirs(models.OutputSpec{models.FormatMP3: dir, models.FormatOgg: dir}, logger))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write check files are removed")
	assert.NotContains(t, buf.String(), "write check file", "clean removal logs nothing")
}

func TestProgressLoggerSteps(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	report := progressLogger(logger)
	report(1<<20, 0)
	report(10<<20, 0)
	report(12<<20, 0)
	report(21<<20, 0)
	report(1<<20, 0)
	report(10<<20, 0)

	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("transfer progress")))
}
