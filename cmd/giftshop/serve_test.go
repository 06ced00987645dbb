package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Flubio/giftshop/pkg/serve"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServe(t *testing.T) {
	serveWorkers = 2
	serveRulesPath = ""
	serveRulesInclude = `repeat\.twice`
	serveRulesExclude = ""
	defer func() { serveRulesInclude = "" }()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(`{"type":"scan","payload":{"input":"11-22,95-115","part":1}}` + "\n"))
	cmd.SetOut(&out)

	require.NoError(t, runServe(cmd, []string{}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var ready serve.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ready))
	var data serve.ReadyData
	require.NoError(t, json.Unmarshal(ready.Data, &data))
	// The include pattern keeps only the exact-twice rule.
	assert.Equal(t, []string{"giftshop.repeat.twice"}, data.Rules)

	var resp serve.Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &resp))
	require.True(t, resp.Success, resp.Error)
	var scan serve.ScanData
	require.NoError(t, json.Unmarshal(resp.Data, &scan))
	assert.Equal(t, int64(11+22+99), scan.Run.Total)
}
