package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/nbcells/pkg/notebook"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 5 // #, KIND, LINES, LANG, PREVIEW
	minOrdinalWidth  = 3
	minKindWidth     = 8
	minLinesWidth    = 8
	minLangWidth     = 8
	minPreviewWidth  = 20
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow represents a single row in the cell table.
type TableRow struct {
	Ordinal  string
	Kind     string
	Lines    string
	Language string
	Preview  string
	cell     notebook.Cell
}

// TableFormatter formats cells as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

type columnWidths struct {
	ordinal int
	kind    int
	lines   int
	lang    int
	preview int
}

// FormatCells formats the cells of one document as a styled table.
func (t *TableFormatter) FormatCells(path string, cells []notebook.Cell) string {
	if len(cells) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, CellToTableRow(c))
	}
	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	if path != "" {
		builder.WriteString(t.styles.FilePath.Render(path))
		builder.WriteString("\n")
	}
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatFooter(cells))
	builder.WriteString("\n")

	return builder.String()
}

// calculateColumnWidths determines column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		ordinal: minOrdinalWidth,
		kind:    minKindWidth,
		lines:   minLinesWidth,
		lang:    minLangWidth,
		preview: minPreviewWidth,
	}

	for _, row := range rows {
		widths.ordinal = max(widths.ordinal, len(row.Ordinal))
		widths.kind = max(widths.kind, len(row.Kind))
		widths.lines = max(widths.lines, len(row.Lines))
		widths.lang = max(widths.lang, len(row.Language))
		widths.preview = max(widths.preview, len(row.Preview))
	}

	// Only the preview shrinks to fit the terminal.
	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		widths.preview = max(minPreviewWidth, widths.preview-(total-t.termWidth))
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.ordinal + widths.kind + widths.lines + widths.lang + widths.preview +
		tablePadding*tableColumnCount
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s  %-*s",
		widths.ordinal, "#",
		widths.kind, "KIND",
		widths.lines, "LINES",
		widths.lang, "LANG",
		widths.preview, "PREVIEW",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.calculateTotalWidth(widths)))
}

// formatRow formats a single table row with kind-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	kind := fmt.Sprintf("%-*s", widths.kind, row.Kind)

	return fmt.Sprintf(" %s  %s  %s  %-*s  %s",
		t.styles.Ordinal.Render(fmt.Sprintf("%*s", widths.ordinal, row.Ordinal)),
		t.styles.KindStyle(row.cell.Kind).Render(kind),
		t.styles.Lines.Render(fmt.Sprintf("%-*s", widths.lines, row.Lines)),
		widths.lang, truncateString(row.Language, widths.lang),
		t.styles.Dim.Render(truncateString(row.Preview, widths.preview)),
	)
}

// formatFooter summarizes the kinds in the table.
func (t *TableFormatter) formatFooter(cells []notebook.Cell) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range cells {
		name := c.Kind.String()
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	parts := []string{fmt.Sprintf("%d cells", len(cells))}
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[name], name))
	}

	return t.styles.TableLegend.Render(" " + strings.Join(parts, " | "))
}

// CellToTableRow converts a cell to a table row.
func CellToTableRow(c notebook.Cell) TableRow {
	return TableRow{
		Ordinal:  strconv.Itoa(c.Ordinal),
		Kind:     c.Kind.String(),
		Lines:    c.Lines.String(),
		Language: c.Language,
		Preview:  preview(c.Body),
		cell:     c,
	}
}

// preview returns the first non-blank line of body.
func preview(body string) string {
	for line := range strings.SplitSeq(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}
