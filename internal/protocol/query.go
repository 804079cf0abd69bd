package protocol

import (
	"strconv"

	"github.com/mle-tools/mle-monitor/internal/models"
)

// Display truncation widths for free-text columns.
const (
	purposeWidth = 25
	projectWidth = 20
)

// SummaryRow is one row of the tabular experiment summary.
type SummaryRow struct {
	ID       string
	Date     string
	Project  string
	Purpose  string
	Type     string
	Status   models.Status
	Resource string
	Seeds    int
	CPUs     int
	GPUs     int
	Jobs     int
}

// SummaryRows projects the most recent tail experiments, newest first.
// Free-text fields are truncated to their display widths and enums mapped
// to short labels. An empty database yields an empty, non-nil slice.
func (p *Protocol) SummaryRows(tail int) ([]SummaryRow, error) {
	rows := make([]SummaryRow, 0, tail)
	if len(p.ids) == 0 {
		return rows, nil
	}
	if tail <= 0 || tail > len(p.ids) {
		tail = len(p.ids)
	}
	selected := p.ids[len(p.ids)-tail:]
	for i := len(selected) - 1; i >= 0; i-- {
		id := selected[i]
		exp, err := p.Get(id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SummaryRow{
			ID:       id,
			Date:     exp.StartTime,
			Project:  truncate(exp.ProjectName, projectWidth),
			Purpose:  truncate(exp.Purpose, purposeWidth),
			Type:     exp.ExperimentType.ShortLabel(),
			Status:   exp.JobStatus,
			Resource: exp.ExecResource.Label(),
			Seeds:    exp.NumSeeds,
			CPUs:     exp.NumCPUs,
			GPUs:     exp.NumGPUs,
			Jobs:     exp.NumTotalJobs,
		})
	}
	return rows, nil
}

// TotalData aggregates status, resource and bookkeeping counts over all
// experiments for the dashboard totals panel.
type TotalData struct {
	Total     string
	Running   string
	Done      string
	Aborted   string
	SGE       string
	Slurm     string
	GCP       string
	Local     string
	ReportGen string
	Stored    string
	Retrieved string
}

// LastData describes the most recently created experiment.
type LastData struct {
	ID        string
	Status    string
	Dir       string
	Type      string
	Script    string
	Config    string
	ReportGen string
	Resource  string
}

// TimeData carries the progress/timing fields of the last experiment.
type TimeData struct {
	Status        string
	TotalJobs     int
	TotalBatches  int
	CompletedJobs int
	JobsPerBatch  string
	TimePerBatch  string
	StartTime     string
	StopTime      string
	Duration      string
	NumSeeds      int
}

// MonitorData bundles everything the dashboard refresh loop reads from the
// protocol side.
type MonitorData struct {
	Total TotalData
	Last  LastData
	Time  TimeData
	Table []SummaryRow
}

// Monitor collects the dashboard projections. A database with zero records
// returns well-defined placeholder panels rather than an error.
func (p *Protocol) Monitor(tableTail int) (*MonitorData, error) {
	data := &MonitorData{
		Total: TotalData{
			Total: "0", Running: "0", Done: "0", Aborted: "0",
			SGE: "0", Slurm: "0", GCP: "0", Local: "0",
			ReportGen: "0", Stored: "0", Retrieved: "0",
		},
		Last: LastData{
			ID: "-", Status: "-", Dir: "-", Type: "-",
			Script: "-", Config: "-", ReportGen: "-", Resource: "-",
		},
		Time: TimeData{
			Status: "-", TotalJobs: 1, TotalBatches: 1,
			JobsPerBatch: "-", TimePerBatch: "-",
			StartTime: "-", StopTime: "-", Duration: "-", NumSeeds: 1,
		},
	}

	rows, err := p.SummaryRows(tableTail)
	if err != nil {
		return nil, err
	}
	data.Table = rows
	if len(p.ids) == 0 {
		return data, nil
	}

	var running, done, aborted, sge, slurm, gcp, local int
	var reportGen, stored, retrieved int
	for _, id := range p.ids {
		exp, err := p.Get(id)
		if err != nil {
			return nil, err
		}
		switch exp.JobStatus {
		case models.StatusRunning:
			running++
		case models.StatusCompleted:
			done++
		default:
			aborted++
		}
		switch exp.ExecResource {
		case models.ResourceSGECluster:
			sge++
		case models.ResourceSlurmCluster:
			slurm++
		case models.ResourceGCPCloud:
			gcp++
		default:
			local++
		}
		if exp.ReportGenerated {
			reportGen++
		}
		if exp.StoredInCloud {
			stored++
		}
		if exp.RetrievedResults {
			retrieved++
		}
	}
	data.Total = TotalData{
		Total:     strconv.Itoa(len(p.ids)),
		Running:   strconv.Itoa(running),
		Done:      strconv.Itoa(done),
		Aborted:   strconv.Itoa(aborted),
		SGE:       strconv.Itoa(sge),
		Slurm:     strconv.Itoa(slurm),
		GCP:       strconv.Itoa(gcp),
		Local:     strconv.Itoa(local),
		ReportGen: strconv.Itoa(reportGen),
		Stored:    strconv.Itoa(stored),
		Retrieved: strconv.Itoa(retrieved),
	}

	lastID := p.ids[len(p.ids)-1]
	last, err := p.Get(lastID)
	if err != nil {
		return nil, err
	}
	data.Last = LastData{
		ID:        lastID,
		Status:    string(last.JobStatus),
		Dir:       last.ExperimentDir,
		Type:      string(last.ExperimentType),
		Script:    last.BaseFname,
		Config:    last.ConfigFname,
		ReportGen: strconv.FormatBool(last.ReportGenerated),
		Resource:  string(last.ExecResource),
	}
	data.Time = TimeData{
		Status:        string(last.JobStatus),
		TotalJobs:     last.NumTotalJobs,
		TotalBatches:  last.NumJobBatches,
		CompletedJobs: last.CompletedJobs,
		JobsPerBatch:  strconv.Itoa(last.NumJobsPerBatch),
		TimePerBatch:  last.TimePerJob,
		StartTime:     last.StartTime,
		StopTime:      last.StopTime,
		Duration:      last.Duration,
		NumSeeds:      last.NumSeeds,
	}
	return data, nil
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}
