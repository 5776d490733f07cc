package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"anvil-esign/internal/domain/entity"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func castTable(casts []entity.Cast) string {
	t := newTable("eid", "title")
	for _, c := range casts {
		t.Row(c.EID, c.Title)
	}
	return t.String()
}

func weldTable(welds []entity.Weld) string {
	t := newTable("eid", "slug", "title")
	for _, w := range welds {
		t.Row(w.EID, w.Slug, w.Title)
	}
	return t.String()
}

func signerTable(signers []entity.EtchPacketSigner) string {
	t := newTable("eid", "name", "email", "routing order", "status")
	for _, s := range signers {
		t.Row(s.EID, s.Name, s.Email, strconv.Itoa(s.RoutingOrder), s.Status)
	}
	return t.String()
}

// batchFilenames returns a generator of name-0.ext, name-1.ext, ...
func batchFilenames(filename string) func() string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	idx := 0
	return func() string {
		name := fmt.Sprintf("%s-%d%s", base, idx, ext)
		idx++
		return name
	}
}

// readCSVRows reads a CSV with a header line into one map per row.
func readCSVRows(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
}
