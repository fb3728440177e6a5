package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"laerad/internal/data/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// NoHistoryMessage is printed when the store has no snapshots for a project.
const NoHistoryMessage = "No scan history recorded."

type trendRow struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Files          int       `json:"files"`
	ParseFailures  int       `json:"parse_failures"`
	Variables      int       `json:"variables"`
	Methods        int       `json:"methods"`
	DeltaVariables int       `json:"delta_variables"`
	DeltaMethods   int       `json:"delta_methods"`
	DurationMS     int64     `json:"duration_ms"`
}

// RenderHistory writes the trend oldest first. format is table or json.
func RenderHistory(w io.Writer, points []history.TrendPoint, format string) error {
	if format == FormatJSON {
		rows := make([]trendRow, 0, len(points))
		for _, p := range points {
			rows = append(rows, trendRow{
				ID:             p.ID,
				Timestamp:      p.Timestamp,
				Files:          p.FileCount,
				ParseFailures:  p.ParseFailureCount,
				Variables:      p.VariableCount,
				Methods:        p.MethodCount,
				DeltaVariables: p.DeltaVariables,
				DeltaMethods:   p.DeltaMethods,
				DurationMS:     p.Duration.Milliseconds(),
			})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(points) == 0 {
		_, err := fmt.Fprintln(w, NoHistoryMessage)
		return err
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Timestamp.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(p.FileCount),
			strconv.Itoa(p.ParseFailureCount),
			strconv.Itoa(p.VariableCount) + " " + signed(p.DeltaVariables),
			strconv.Itoa(p.MethodCount) + " " + signed(p.DeltaMethods),
			p.Duration.Round(time.Millisecond).String(),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Scanned", "Files", "Failed", "Variables", "Methods", "Took").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func signed(delta int) string {
	return fmt.Sprintf("(%+d)", delta)
}
