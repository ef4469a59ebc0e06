package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lizzypokerface/news-hub-aggregator/internal/pipeline"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderResults shows one row per phase in run order.
func renderResults(results []pipeline.Result) string {
	rows := make([][]string, 0, len(results))
	for i, res := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			res.Name,
			res.Key,
			stateLabel(res.State),
			formatDuration(res.Duration),
			strconv.Itoa(len(res.Reports)),
		})
	}
	return renderTable(
		[]string{"#", "Phase", "Checkpoint", "State", "Duration", "Reports"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func stateLabel(state pipeline.State) string {
	switch state {
	case pipeline.Skipped:
		return "done (checkpoint)"
	case pipeline.NotStarted:
		return "pending"
	default:
		return strings.ReplaceAll(string(state), "_", " ")
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
