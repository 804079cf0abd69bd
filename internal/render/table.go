// Package render formats protocol projections for the terminal. Pure
// presentation; it never mutates protocol state.
package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/protocol"
	"github.com/mle-tools/mle-monitor/internal/tracker"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	abortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func statusSymbol(s models.Status) string {
	switch s {
	case models.StatusRunning:
		return runningStyle.Render("●")
	case models.StatusCompleted:
		return doneStyle.Render("✔")
	default:
		return abortStyle.Render("✖")
	}
}

// SummaryTable renders the experiment summary rows, newest first. The full
// variant appends the per-job resource columns.
func SummaryTable(rows []protocol.SummaryRow, full bool) string {
	headers := []string{"", "E-ID", "Date", "Project", "Purpose", "Type", "Resource"}
	if full {
		headers = append(headers, "#Jobs", "#CPU", "#GPU", "#Seeds")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)

	for _, row := range rows {
		cells := []string{
			statusSymbol(row.Status),
			row.ID,
			row.Date,
			row.Project,
			row.Purpose,
			row.Type,
			row.Resource,
		}
		if full {
			cells = append(cells,
				strconv.Itoa(row.Jobs),
				strconv.Itoa(row.CPUs),
				strconv.Itoa(row.GPUs),
				strconv.Itoa(row.Seeds),
			)
		}
		t.Row(cells...)
	}
	return t.Render()
}

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("12")).
	Padding(0, 1)

// UsagePanel renders the latest sample of the host utilization history.
func UsagePanel(h tracker.History) string {
	if len(h.TimesHour) == 0 {
		return panelStyle.Render("Usage\nno samples yet")
	}
	last := len(h.TimesHour) - 1
	return panelStyle.Render(fmt.Sprintf(
		"Usage  %s %s\nmem %3.0f%%\ncpu %3.0f%%\nsamples %d",
		h.TimesDate[last], h.TimesHour[last],
		h.RelMemUtil[last]*100, h.RelCPUUtil[last]*100,
		len(h.TimesHour),
	))
}

// Dashboard lays out the totals, last-experiment, timing and usage panels
// next to the summary table. An empty usage string drops that panel.
func Dashboard(data *protocol.MonitorData, usage string) string {
	totals := panelStyle.Render(fmt.Sprintf(
		"Experiments  total %s\nrunning %s  done %s  aborted %s\nSGE %s  Slurm %s  GCP %s  Local %s\nreports %s  stored %s  retrieved %s",
		data.Total.Total,
		data.Total.Running, data.Total.Done, data.Total.Aborted,
		data.Total.SGE, data.Total.Slurm, data.Total.GCP, data.Total.Local,
		data.Total.ReportGen, data.Total.Stored, data.Total.Retrieved,
	))
	last := panelStyle.Render(fmt.Sprintf(
		"Last Experiment  E-ID %s\nstatus %s  resource %s\ntype %s\ndir %s\nscript %s\nconfig %s",
		data.Last.ID, data.Last.Status, data.Last.Resource,
		data.Last.Type, data.Last.Dir, data.Last.Script, data.Last.Config,
	))
	timing := panelStyle.Render(fmt.Sprintf(
		"Progress  %d/%d jobs\nbatches %d  per batch %s\nseeds %d  budget %s\nstart %s\nstop  %s\nduration %s",
		data.Time.CompletedJobs, data.Time.TotalJobs,
		data.Time.TotalBatches, data.Time.JobsPerBatch,
		data.Time.NumSeeds, data.Time.TimePerBatch,
		data.Time.StartTime, data.Time.StopTime, data.Time.Duration,
	))

	panels := []string{totals, last, timing}
	if usage != "" {
		panels = append(panels, usage)
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	return lipgloss.JoinVertical(lipgloss.Left, top, SummaryTable(data.Table, false))
}
