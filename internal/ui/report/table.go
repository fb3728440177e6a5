package report

import (
	"strconv"
	"strings"

	"laerad/internal/engine/result"
	"laerad/internal/ui/report/formats"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table renders one table per non-empty collection.
func Table(projectRoot string, res *result.Result) string {
	var sections []string
	if len(res.Variables) > 0 {
		sections = append(sections, section("Single-use variables:", "Variable", projectRoot, res.Variables))
	}
	if len(res.Methods) > 0 {
		sections = append(sections, section("Single-use methods:", "Method", projectRoot, res.Methods))
	}
	return strings.Join(sections, "\n\n")
}

func section(heading, nameColumn, projectRoot string, violations []result.Violation) string {
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []string{
			formats.RelativeURI(projectRoot, v.File),
			strconv.Itoa(v.Line),
			v.Name,
			strconv.Itoa(v.Count),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("File", "Line", nameColumn, "Uses").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return headingStyle.Render(heading) + "\n" + t.String()
}
