package main

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anvil-esign/internal/domain/entity"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			args:    []string{"cast", "--list"},
			command: "cast",
			check:   func(t *testing.T, cli *CLI) { assert.True(t, cli.Cast.List) },
		},
		{
			args:    []string{"cast", "abc123", "--fields", "eid,title"},
			command: "cast <eid>",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, "abc123", cli.Cast.EID)
				assert.Equal(t, []string{"eid", "title"}, cli.Cast.Fields)
			},
		},
		{
			args:    []string{"--debug", "generate-etch-url", "-s", "signer", "-c", "client"},
			command: "generate-etch-url",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, cli.Debug)
				assert.Equal(t, "signer", cli.GenerateEtchURL.Signer)
				assert.Equal(t, "client", cli.GenerateEtchURL.Client)
			},
		},
		{
			args:    []string{"download-documents", "-g", "grp", "--stdout"},
			command: "download-documents",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, "grp", cli.DownloadDocuments.DocumentGroup)
				assert.True(t, cli.DownloadDocuments.Stdout)
			},
		},
		{
			args:    []string{"gql-query", "-q", "{ currentUser { eid } }", "-v", `{"a":1}`},
			command: "gql-query",
			check:   func(t *testing.T, cli *CLI) { assert.Equal(t, `{"a":1}`, cli.GQLQuery.Variables) },
		},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cli := &CLI{}
			parser, err := kong.New(cli, kong.Name("anvil"))
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
			tt.check(t, cli)
		})
	}
}

func TestBatchFilenames(t *testing.T) {
	next := batchFilenames("out/filled.pdf")
	assert.Equal(t, "out/filled-0.pdf", next())
	assert.Equal(t, "out/filled-1.pdf", next())
	assert.Equal(t, "out/filled-2.pdf", next())
}

func TestReadCSVRows(t *testing.T) {
	rows, err := readCSVRows(strings.NewReader("name, email\nAnn, ann@example.com\nBob,bob@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"name": "Ann", "email": "ann@example.com"},
		{"name": "Bob", "email": "bob@example.com"},
	}, rows)

	rows, err = readCSVRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTables(t *testing.T) {
	out := castTable([]entity.Cast{{EID: "c1", Title: "Lease"}})
	assert.Contains(t, out, "c1")
	assert.Contains(t, out, "Lease")

	out = weldTable([]entity.Weld{{EID: "w1", Slug: "onboard", Title: "Onboarding"}})
	assert.Contains(t, out, "onboard")
}
