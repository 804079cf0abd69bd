package protocol

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/parser"
)

var (
	ErrInvalidExperimentType = errors.New("invalid experiment type")
	ErrInvalidTransition     = errors.New("invalid status transition")
)

// noGitRepo is recorded when no source-control revision is available.
const noGitRepo = "no-git-repo"

// ExperimentSpec carries the standard fields accepted on experiment
// creation. Zero values are substituted from the default table before the
// record is built.
type ExperimentSpec struct {
	Purpose         string
	ProjectName     string
	ExecResource    models.ExecResource
	ExperimentDir   string
	ExperimentType  models.ExperimentType
	BaseFname       string
	ConfigFname     string
	NumSeeds        int
	NumTotalJobs    int
	NumJobBatches   int
	NumJobsPerBatch int
	TimePerJob      string
	NumCPUs         int
	NumGPUs         int
}

// applyDefaults fills every unset standard field. NumGPUs defaults to 0 and
// therefore needs no substitution.
func (s *ExperimentSpec) applyDefaults() {
	if s.Purpose == "" {
		s.Purpose = "default"
	}
	if s.ProjectName == "" {
		s.ProjectName = "default"
	}
	if s.ExecResource == "" {
		s.ExecResource = models.ResourceLocal
	}
	if s.ExperimentDir == "" {
		s.ExperimentDir = "experiments"
	}
	if s.ExperimentType == "" {
		s.ExperimentType = models.TypeSingleConfig
	}
	if s.NumSeeds == 0 {
		s.NumSeeds = 1
	}
	if s.NumTotalJobs == 0 {
		s.NumTotalJobs = 1
	}
	if s.NumJobBatches == 0 {
		s.NumJobBatches = 1
	}
	if s.NumJobsPerBatch == 0 {
		s.NumJobsPerBatch = 1
	}
	if s.TimePerJob == "" {
		s.TimePerJob = "00:01:00"
	}
	if s.NumCPUs == 0 {
		s.NumCPUs = 1
	}
}

func (s *ExperimentSpec) validate() error {
	if !s.ExperimentType.Valid() {
		return fmt.Errorf("%w: %q (valid: %s, %s, %s)", ErrInvalidExperimentType,
			s.ExperimentType, models.TypeHyperparameterSearch,
			models.TypeMultipleConfigs, models.TypeSingleConfig)
	}
	return nil
}

// buildExperiment constructs the complete record for a validated spec:
// config snapshot, content hash, git revision, initial lifecycle fields and
// the estimated completion time.
func buildExperiment(spec ExperimentSpec, now time.Time) (*models.Experiment, error) {
	duration, stop, err := estimateDuration(now, spec.TimePerJob, spec.NumJobBatches)
	if err != nil {
		return nil, err
	}

	exp := &models.Experiment{
		Purpose:         spec.Purpose,
		ProjectName:     spec.ProjectName,
		ExecResource:    spec.ExecResource,
		ExperimentDir:   spec.ExperimentDir,
		ExperimentType:  spec.ExperimentType,
		BaseFname:       spec.BaseFname,
		ConfigFname:     spec.ConfigFname,
		NumSeeds:        spec.NumSeeds,
		NumTotalJobs:    spec.NumTotalJobs,
		NumJobBatches:   spec.NumJobBatches,
		NumJobsPerBatch: spec.NumJobsPerBatch,
		TimePerJob:      spec.TimePerJob,
		NumCPUs:         spec.NumCPUs,
		NumGPUs:         spec.NumGPUs,

		LoadedConfig: snapshotConfigs(spec.ConfigFname),
		GitHash:      gitRevision(),
		Hash:         experimentHash(now, spec.ConfigFname),

		JobStatus:     models.StatusRunning,
		CompletedJobs: 0,
		StartTime:     now.Format(models.TimeLayout),
		StopTime:      stop.Format(models.TimeLayout),
		Duration:      duration,
	}
	return exp, nil
}

// experimentHash derives the content hash used as the remote storage key
// for result archives: MD5 over the creation timestamp and the config
// filename. Collisions within the same second for the same config file are
// an accepted limitation.
func experimentHash(now time.Time, configFname string) string {
	canonical := fmt.Sprintf(`{"time": %q, "config_fname": %q}`,
		now.Format(models.HashTimeLayout), configFname)
	digest := md5.Sum([]byte(canonical))
	return hex.EncodeToString(digest[:])
}

// snapshotConfigs loads the configuration file contents at creation time.
// Parse failures fall back to an empty config rather than aborting record
// creation.
func snapshotConfigs(configFname string) []map[string]any {
	if configFname == "" {
		return []map[string]any{}
	}
	configs := make([]map[string]any, 0, 1)
	for _, fname := range strings.Split(configFname, ",") {
		fname = strings.TrimSpace(fname)
		if fname == "" {
			continue
		}
		cfg := loadConfigFile(fname)
		configs = append(configs, cfg)
	}
	return configs
}

func loadConfigFile(fname string) map[string]any {
	file, err := os.Open(fname)
	if err != nil {
		return map[string]any{}
	}
	defer file.Close()

	var cfg map[string]any
	switch filepath.Ext(fname) {
	case ".yaml", ".yml":
		cfg, err = parser.ParseYAMLConfig(file)
	case ".json":
		cfg, err = parser.ParseJSONConfig(file)
	default:
		return map[string]any{}
	}
	if err != nil {
		return map[string]any{}
	}
	return cfg
}

// gitRevision returns the HEAD commit hash of the surrounding repository,
// or the no-git-repo sentinel when none is found.
func gitRevision() string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return noGitRepo
	}
	rev := strings.TrimSpace(string(out))
	if rev == "" {
		return noGitRepo
	}
	return rev
}

// estimateDuration multiplies the per-batch time budget (days:hours:minutes)
// by the batch count with clock-arithmetic carries, returning the formatted
// total duration and the estimated stop time.
func estimateDuration(start time.Time, timePerJob string, batches int) (string, time.Time, error) {
	parts := strings.Split(timePerJob, ":")
	if len(parts) != 3 {
		return "", time.Time{}, fmt.Errorf("invalid time budget %q (expected days:hours:minutes)", timePerJob)
	}
	days, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid days in time budget %q: %w", timePerJob, err)
	}
	hours, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid hours in time budget %q: %w", timePerJob, err)
	}
	minutes, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid minutes in time budget %q: %w", timePerJob, err)
	}

	totalMinutes := batches * minutes
	carryHours, totalMinutes := totalMinutes/60, totalMinutes%60
	totalHours := batches*hours + carryHours
	carryDays, totalHours := totalHours/24, totalHours%24
	totalDays := batches*days + carryDays

	duration := fmt.Sprintf("%02d:%02d:%02d", totalDays, totalHours, totalMinutes)
	stop := start.Add(time.Duration(totalDays)*24*time.Hour +
		time.Duration(totalHours)*time.Hour +
		time.Duration(totalMinutes)*time.Minute)
	return duration, stop, nil
}
