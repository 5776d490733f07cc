package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/etch"
	"anvil-esign/internal/infrastructure/payloadfile"
)

// stdinName reads a payload from standard input instead of a file
const stdinName = "-"

type CurrentUserCmd struct{}

func (c *CurrentUserCmd) Run(e *env) error {
	user, err := e.anvil.CurrentUser(e.ctx)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, user)
}

type CastCmd struct {
	EID    string   `arg:"" optional:"" help:"Cast eid."`
	List   bool     `help:"List casts marked as templates." short:"l"`
	All    bool     `help:"List all casts, even non-templates." short:"a"`
	Fields []string `help:"Cast fields to fetch." sep:","`
}

func (c *CastCmd) Run(e *env) error {
	if c.EID == "" && !c.List && !c.All {
		return fmt.Errorf("cast eid or --list/--all option required")
	}

	if c.List || c.All {
		casts, err := e.anvil.GetCasts(e.ctx, c.Fields, c.All)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, castTable(casts))
		return nil
	}

	cast, err := e.anvil.GetCast(e.ctx, c.EID, c.Fields)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, cast)
}

type WeldCmd struct{}

func (c *WeldCmd) Run(e *env) error {
	welds, err := e.anvil.GetWelds(e.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, weldTable(welds))
	return nil
}

type FillPDFCmd struct {
	TemplateID string        `arg:"" help:"PDF template eid."`
	Input      string        `help:"CSV file, one PDF per row keyed by the header." short:"i" required:"" type:"existingfile"`
	Out        string        `help:"Output PDF filename. Rows are written to name-0.pdf, name-1.pdf, ..." short:"o" required:""`
	Pause      time.Duration `help:"Pause between requests." default:"1s"`
}

func (c *FillPDFCmd) Run(e *env) error {
	f, err := os.Open(c.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readCSVRows(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Input, err)
	}

	names := batchFilenames(c.Out)
	for i, row := range rows {
		pdf, err := e.pdf.FillPDF(e.ctx, c.TemplateID, map[string]any{"data": row})
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		name := names()
		fmt.Fprintf(os.Stdout, "Writing %s\n", name)
		if err := os.WriteFile(name, pdf, 0o644); err != nil {
			return err
		}

		if i < len(rows)-1 && c.Pause > 0 {
			time.Sleep(c.Pause)
		}
	}
	return nil
}

type GeneratePDFCmd struct {
	Input string `help:"Payload file (JSON, JSONC or YAML), or - for stdin." short:"i" required:""`
	Out   string `help:"Output PDF filename." short:"o" required:""`
}

func (c *GeneratePDFCmd) Run(e *env) error {
	input, err := readPayload(c.Input)
	if err != nil {
		return err
	}

	pdf, err := e.pdf.GeneratePDF(e.ctx, input)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Out, pdf, 0o644)
}

type CreateEtchCmd struct {
	Payload string `help:"Payload file (JSON, JSONC or YAML), or - for stdin. String file entries are paths relative to the working directory." short:"p" required:""`
}

func (c *CreateEtchCmd) Run(e *env) error {
	input, err := readPayload(c.Payload)
	if err != nil {
		return err
	}

	packet, err := etch.FromMap(input)
	if err != nil {
		return err
	}
	assembled, _, err := packet.Assemble()
	if err != nil {
		return err
	}

	created, err := e.repo.CreateEtchPacket(e.ctx, assembled)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Etch packet created with id: %s\n", created.EID)
	if created.DocumentGroup != nil {
		fmt.Fprintln(os.Stdout, signerTable(created.DocumentGroup.Signers))
	}
	return nil
}

type GenerateEtchURLCmd struct {
	Signer string `help:"Eid of the next signer, from the createEtchPacket response." short:"s" required:""`
	Client string `help:"The signer's user id in your system." short:"c" required:""`
}

func (c *GenerateEtchURLCmd) Run(e *env) error {
	signURL, err := e.repo.GenerateEtchSigningURL(e.ctx, &entity.GenerateEtchSigningURLPayload{
		SignerEID:    c.Signer,
		ClientUserID: c.Client,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Signing URL is: %s\n", signURL)
	return nil
}

type DownloadDocumentsCmd struct {
	DocumentGroup string `help:"Document group eid, from the createEtchPacket response." short:"g" required:""`
	Filename      string `help:"Filename for the zip. Defaults to <eid>.zip." short:"f"`
	Stdout        bool   `help:"Write the zip to stdout instead of a file."`
}

func (c *DownloadDocumentsCmd) Run(e *env) error {
	content, err := e.anvil.DownloadDocuments(e.ctx, c.DocumentGroup)
	if err != nil {
		return err
	}

	if c.Stdout {
		_, err := os.Stdout.Write(content)
		return err
	}

	name := c.Filename
	if name == "" {
		name = c.DocumentGroup + ".zip"
	}
	if err := os.WriteFile(name, content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Saved as '%s'\n", filepath.Clean(name))
	return nil
}

type GQLQueryCmd struct {
	Query     string `help:"The query body." short:"q" required:""`
	Variables string `help:"The query variables as a JSON object." short:"v"`
}

func (c *GQLQueryCmd) Run(e *env) error {
	var variables map[string]any
	if c.Variables != "" {
		v, err := payloadfile.Parse([]byte(c.Variables), ".json")
		if err != nil {
			return fmt.Errorf("invalid variables: %w", err)
		}
		variables = v
	}

	data, err := e.anvil.Query(e.ctx, c.Query, variables)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, data)
}

func readPayload(name string) (map[string]any, error) {
	if name != stdinName {
		return payloadfile.ReadFile(name)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	return payloadfile.Parse(data, ".json")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
