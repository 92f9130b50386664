package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/testutil"
)

const tavernGrammar = `name: tavern
rule:
  greeting: [Hello, Hi, Welcome]
  drink: [ale, mead, cider, wine]
  main: "%greeting%, have some %drink%"
`

// tavernSeeded2024 are the first four tavern outputs for seed 2024.
var tavernSeeded2024 = []string{
	"Hello, have some wine",
	"Welcome, have some cider",
	"Hello, have some wine",
	"Welcome, have some wine",
}

const zooGrammar = `name: "zoo"
rule: animal: ["owl"]
rule: main: "a %animal% saw a %animal%"
`

const loopGrammar = `rule:
  main: "%a%"
  a: "%b%"
  b: "%a%"
`

// writeGrammar writes a grammar into a fresh temp dir and returns its path.
func writeGrammar(t *testing.T, name, body string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), name, body)
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON CLI response, decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}
