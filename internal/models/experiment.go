package models

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of an experiment.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Terminal reports whether no further status transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// ExperimentType categorizes how an experiment explores configurations.
type ExperimentType string

const (
	TypeHyperparameterSearch ExperimentType = "hyperparameter-search"
	TypeMultipleConfigs      ExperimentType = "multiple-configs"
	TypeSingleConfig         ExperimentType = "single-config"
)

// AllExperimentTypes lists every valid experiment type. The order is fixed
// since the summary series iterate over it.
var AllExperimentTypes = []ExperimentType{
	TypeHyperparameterSearch,
	TypeMultipleConfigs,
	TypeSingleConfig,
}

func (t ExperimentType) Valid() bool {
	for _, known := range AllExperimentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ShortLabel maps the experiment type to the label shown in summary tables.
func (t ExperimentType) ShortLabel() string {
	switch t {
	case TypeHyperparameterSearch:
		return "search"
	case TypeMultipleConfigs:
		return "multi"
	default:
		return "single"
	}
}

// ExecResource is the compute environment an experiment runs on.
type ExecResource string

const (
	ResourceLocal        ExecResource = "local"
	ResourceSGECluster   ExecResource = "sge-cluster"
	ResourceSlurmCluster ExecResource = "slurm-cluster"
	ResourceGCPCloud     ExecResource = "gcp-cloud"
)

// Label maps the resource to the short display label used in tables.
func (r ExecResource) Label() string {
	switch r {
	case ResourceSGECluster:
		return "SGE"
	case ResourceSlurmCluster:
		return "Slurm"
	case ResourceGCPCloud:
		return "GCP"
	default:
		return "Local"
	}
}

// Time layouts used throughout the protocol database.
const (
	TimeLayout     = "01/02/06 15:04"
	DayLayout      = "01/02/06"
	HashTimeLayout = "01/02/2006 15:04:05"
)

// Experiment is one protocol record. The JSON tags define the field names
// used in the serialized store.
type Experiment struct {
	Purpose         string         `json:"purpose"`
	ProjectName     string         `json:"project_name"`
	ExecResource    ExecResource   `json:"exec_resource"`
	ExperimentDir   string         `json:"experiment_dir"`
	ExperimentType  ExperimentType `json:"experiment_type"`
	BaseFname       string         `json:"base_fname"`
	ConfigFname     string         `json:"config_fname"`
	NumSeeds        int            `json:"num_seeds"`
	NumTotalJobs    int            `json:"num_total_jobs"`
	NumJobBatches   int            `json:"num_job_batches"`
	NumJobsPerBatch int            `json:"num_jobs_per_batch"`
	TimePerJob      string         `json:"time_per_job"`
	NumCPUs         int            `json:"num_cpus"`
	NumGPUs         int            `json:"num_gpus"`

	LoadedConfig []map[string]any `json:"loaded_config"`
	GitHash      string           `json:"git_hash"`
	Hash         string           `json:"e-hash"`

	RetrievedResults bool   `json:"retrieved_results"`
	StoredInCloud    bool   `json:"stored_in_cloud"`
	ReportGenerated  bool   `json:"report_generated"`
	JobStatus        Status `json:"job_status"`
	CompletedJobs    int    `json:"completed_jobs"`
	StartTime        string `json:"start_time"`
	StopTime         string `json:"stop_time"`
	Duration         string `json:"duration"`
}

// Fields flattens the experiment into the generic string-keyed map used at
// the store boundary.
func (e *Experiment) Fields() (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode experiment: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode experiment fields: %w", err)
	}
	return fields, nil
}

// ExperimentFromFields reconstructs a typed experiment from a store record.
// Unknown fields (caller-supplied extras) are ignored.
func ExperimentFromFields(fields map[string]any) (*Experiment, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record fields: %w", err)
	}
	var exp Experiment
	if err := json.Unmarshal(raw, &exp); err != nil {
		return nil, fmt.Errorf("failed to decode experiment record: %w", err)
	}
	return &exp, nil
}
