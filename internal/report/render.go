// Package report renders listings for the command line as aligned tables,
// CSV, JSON or YAML.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name. Blank means table.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", name)
	}
}

// Render writes rows to out. Row types carry csv tags, which define the
// columns of both the CSV and the table output.
func Render[T any](out io.Writer, format Format, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	switch format {
	case FormatTable, "":
		return renderTable(out, rows)
	case FormatCSV:
		if err := gocsv.Marshal(rows, out); err != nil {
			return fmt.Errorf("error writing CSV data: %w", err)
		}
		return nil
	case FormatJSON, FormatYAML:
		return Encode(out, format, rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Encode writes v as a single JSON or YAML document.
func Encode(out io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode documents", format)
	}
}

// Section writes a titled block of rows. Table and CSV output separate
// sections with a blank line.
func Section[T any](out io.Writer, format Format, title string, rows []T) error {
	if format == FormatTable || format == "" {
		if _, err := fmt.Fprintf(out, "%s\n", strings.ToUpper(title)); err != nil {
			return err
		}
	}
	if err := Render(out, format, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}

func renderTable[T any](out io.Writer, rows []T) error {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return fmt.Errorf("error building table: %w", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		return fmt.Errorf("error building table: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, rec := range records {
		if i == 0 {
			for j := range rec {
				rec[j] = strings.ToUpper(rec[j])
			}
		}
		for j := range rec {
			rec[j] = strings.NewReplacer("\t", " ", "\n", " ").Replace(rec[j])
		}
		if _, err := fmt.Fprintln(tw, strings.Join(rec, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
