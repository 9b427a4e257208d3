/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package render provides shared rendering functions for CLI output:
// resolution tables, cycle reports, merge conflict reports, and
// resolution order listings.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/kesher/merge"
	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/token"
	"bennypowers.dev/kesher/tree"
)

// Row holds computed display values for a single token.
type Row struct {
	Path    string   // Dot path of the token
	Type    string   // Token type or "-"
	Value   string   // Display value (resolved if applicable)
	Chain   []string // Resolution chain as dot paths
	IsColor bool     // Whether this is a color token with parseable value
}

// ComputeRows transforms a resolved tree into display rows, sorted by
// dot path.
func ComputeRows(root *token.Group, result *resolver.Result) []Row {
	tokens := root.AllTokens()
	rows := make([]Row, 0, len(tokens))
	for _, tok := range tokens {
		path := tok.DotPath()
		value := tok.Value
		if result != nil {
			if v, ok := result.Values[path]; ok {
				value = v
			}
		}
		row := Row{
			Path:  path,
			Type:  tok.Type,
			Value: formatValue(value),
		}
		if row.Type == "" {
			row.Type = "-"
		}
		if result != nil {
			row.Chain = result.Chains[path]
		}
		if tok.Type == "color" && !strings.HasPrefix(row.Value, "{") {
			if _, err := csscolorparser.Parse(row.Value); err == nil {
				row.IsColor = true
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// formatValue renders a token value for display. Composite values are
// shown as compact JSON.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ColumnWidths calculates the max width needed for each column.
func ColumnWidths(rows []Row) (path, typ, val int) {
	path, typ, val = 4, 4, 5 // minimums for headers
	for _, r := range rows {
		if len(r.Path) > path {
			path = len(r.Path)
		}
		if len(r.Type) > typ {
			typ = len(r.Type)
		}
		if len(r.Value) > val {
			val = len(r.Value)
		}
	}
	return
}

// ColorSwatch returns a 24-bit ANSI color block for the given color value.
func ColorSwatch(value string) string {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return ""
	}
	r, g, b, _ := c.RGBA255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m ", r, g, b)
}

// Table renders rows as an aligned table.
func Table(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		return
	}
	pathW, typeW, _ := ColumnWidths(rows)
	for _, r := range rows {
		swatch := ""
		if r.IsColor {
			swatch = ColorSwatch(r.Value)
		}
		chain := ""
		if len(r.Chain) > 0 {
			chain = " → " + strings.Join(r.Chain, " → ")
		}
		fmt.Fprintf(w, "%-*s  %-*s  %s%s%s\n", pathW, r.Path, typeW, r.Type, swatch, r.Value, chain)
	}
}

// Markdown renders rows as markdown tables grouped by type, with
// title-cased headings.
func Markdown(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		return
	}

	// Group rows by type, preserving order of first occurrence
	typeOrder := make([]string, 0)
	byType := make(map[string][]Row)
	for _, r := range rows {
		if _, exists := byType[r.Type]; !exists {
			typeOrder = append(typeOrder, r.Type)
		}
		byType[r.Type] = append(byType[r.Type], r)
	}

	caser := cases.Title(language.English)

	first := true
	for _, typ := range typeOrder {
		group := byType[typ]
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		heading := typ
		if heading == "-" {
			heading = "untyped"
		}
		fmt.Fprintf(w, "## %s\n\n", caser.String(heading))

		pathW, valW, chainW := 4, 5, 9
		hasChains := false
		for _, r := range group {
			if len(r.Path) > pathW {
				pathW = len(r.Path)
			}
			if len(r.Value) > valW {
				valW = len(r.Value)
			}
			if len(r.Chain) > 0 {
				hasChains = true
				chainStr := strings.Join(r.Chain, " → ")
				if len(chainStr) > chainW {
					chainW = len(chainStr)
				}
			}
		}

		if hasChains {
			fmt.Fprintf(w, "| %-*s | %-*s | %-*s |\n", pathW, "Path", valW, "Value", chainW, "Reference")
			fmt.Fprintf(w, "|-%s-|-%s-|-%s-|\n",
				strings.Repeat("-", pathW), strings.Repeat("-", valW), strings.Repeat("-", chainW))
			for _, r := range group {
				chainStr := strings.Join(r.Chain, " → ")
				fmt.Fprintf(w, "| %-*s | %-*s | %-*s |\n", pathW, r.Path, valW, r.Value, chainW, chainStr)
			}
		} else {
			fmt.Fprintf(w, "| %-*s | %-*s |\n", pathW, "Path", valW, "Value")
			fmt.Fprintf(w, "|-%s-|-%s-|\n", strings.Repeat("-", pathW), strings.Repeat("-", valW))
			for _, r := range group {
				fmt.Fprintf(w, "| %-*s | %-*s |\n", pathW, r.Path, valW, r.Value)
			}
		}
	}
}

// Errors renders resolution errors, one per line.
func Errors(w io.Writer, errs []resolver.Error) {
	for _, e := range errs {
		fmt.Fprintf(w, "error: %s\n", e.Error())
	}
}

// Warnings renders tree-building warnings, one per line.
func Warnings(w io.Writer, warnings []tree.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", warning.Path, warning.Message)
	}
}

// CycleReport renders detected reference cycles.
func CycleReport(w io.Writer, cycles [][]string) {
	if len(cycles) == 0 {
		return
	}
	fmt.Fprintf(w, "found %d reference cycle(s):\n", len(cycles))
	for i, cycle := range cycles {
		fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(cycle, " → "))
	}
}

// ConflictReport renders merge conflicts.
func ConflictReport(w io.Writer, conflicts []merge.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(w, "found %d merge conflict(s):\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Fprintf(w, "  %s\n", c.String())
	}
}

// Order renders a resolution order, one path per line.
func Order(w io.Writer, order []string) {
	for _, path := range order {
		fmt.Fprintln(w, path)
	}
}

// JSON renders a document as indented JSON.
func JSON(w io.Writer, doc map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
