package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// execRun runs a full command line and captures both output streams.
func execRun(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		logger = zap.NewNop()
		resetSolveFlags()
	}()

	code = run(args)
	return code, out.String(), errOut.String()
}

func TestRun_Success(t *testing.T) {
	input := writeInput(t, "95-115")

	code, stdout, _ := execRun(t, "--input", input, "--quiet")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Part 1: 99\nPart 2: 210\n", stdout)

	code, stdout, _ = execRun(t, "solve", "--input", input, "--part", "1", "--quiet")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Part 1: 99\n", stdout)
}

func TestRun_ExitStatusOnError(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		errText string
	}{
		{"missing input", func(t *testing.T) []string {
			return []string{"--input", filepath.Join(t.TempDir(), "none.txt"), "--quiet"}
		}, "failed to read input file"},
		{"malformed input", func(t *testing.T) []string {
			return []string{"solve", "--input", writeInput(t, "10"), "--quiet"}
		}, `"10"`},
		{"missing config", func(t *testing.T) []string {
			return []string{"version", "--config", filepath.Join(t.TempDir(), "none.yml")}
		}, "failed to read config"},
		{"unknown command", func(t *testing.T) []string {
			return []string{"frobnicate"}
		}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execRun(t, tt.args(t)...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error:")
			assert.Contains(t, stderr, tt.errText)
		})
	}
}
