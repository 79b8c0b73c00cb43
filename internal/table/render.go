package table

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Render writes the table to w as a markdown-style table, with the index as
// the first column. Intended for CLI display; WriteTSV is the machine form.
func (t *Table) Render(w io.Writer, indexName string) {
	headers := append([]string{indexName}, t.columns...)

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	tbl := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	tbl.Header(headers)

	for i, row := range t.rows {
		cells := make([]string, 0, len(headers))
		cells = append(cells, t.index[i])
		for _, c := range t.columns {
			cells = append(cells, row[c])
		}
		tbl.Append(cells)
	}

	tbl.Render()
	fmt.Fprintf(w, "\n_%d rows_\n", len(t.rows))
}
