package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mle-tools/mle-monitor/internal/config"
	"github.com/mle-tools/mle-monitor/internal/models"
	"github.com/mle-tools/mle-monitor/internal/protocol"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new experiment",
	Long: `Record a new experiment in the protocol database.
Missing standard fields are substituted from the default table.`,
	Example: `  # Record a single-config experiment with a 2h30m budget per batch
  mle-monitor add --purpose "baseline sweep" --config-fname base.yaml \
    --time-per-job 00:02:30 --num-job-batches 2`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("purpose", "", "Purpose of the experiment (prompted if omitted)")
	addCmd.Flags().String("project", "", "Project name")
	addCmd.Flags().String("resource", "local", "Execution resource (local/sge-cluster/slurm-cluster/gcp-cloud)")
	addCmd.Flags().String("experiment-dir", "experiments", "Directory holding experiment results")
	addCmd.Flags().String("experiment-type", "single-config", "Experiment type (hyperparameter-search/multiple-configs/single-config)")
	addCmd.Flags().String("base-fname", "", "Base script filename")
	addCmd.Flags().String("config-fname", "", "Config filename(s), comma separated")
	addCmd.Flags().Int("num-seeds", 1, "Number of random seeds")
	addCmd.Flags().Int("num-total-jobs", 1, "Total number of jobs")
	addCmd.Flags().Int("num-job-batches", 1, "Number of job batches")
	addCmd.Flags().Int("num-jobs-per-batch", 1, "Jobs per batch")
	addCmd.Flags().String("time-per-job", "00:01:00", "Time budget per job (days:hours:minutes)")
	addCmd.Flags().Int("num-cpus", 1, "CPUs per job")
	addCmd.Flags().Int("num-gpus", 0, "GPUs per job")
	addCmd.Flags().StringArray("extra", []string{}, "Extra fields in key=value format")
	addCmd.Flags().Bool("no-save", false, "Defer persisting the database (batch mutations)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ctx := context.Background()
	db, err := openProtocol(ctx, cfg)
	if err != nil {
		return err
	}

	spec, err := buildExperimentSpec(cmd)
	if err != nil {
		return err
	}

	// Parse extra fields
	extraPairs, _ := cmd.Flags().GetStringArray("extra")
	extra, err := parseExtraFields(extraPairs)
	if err != nil {
		return err
	}

	noSave, _ := cmd.Flags().GetBool("no-save")
	newID, err := db.Add(spec, extra, !noSave)
	if err != nil {
		return fmt.Errorf("failed to record experiment: %w", err)
	}
	if !noSave {
		pushProtocol(ctx, db)
	}

	// Output only the experiment ID for shell scripting
	fmt.Printf("%s\n", newID)
	return nil
}

// buildExperimentSpec constructs the standard fields from command flags
func buildExperimentSpec(cmd *cobra.Command) (protocol.ExperimentSpec, error) {
	purpose, _ := cmd.Flags().GetString("purpose")
	if purpose == "" && !cmd.Flags().Changed("purpose") {
		purpose = promptPurpose()
	}

	project, _ := cmd.Flags().GetString("project")
	resource, _ := cmd.Flags().GetString("resource")
	experimentDir, _ := cmd.Flags().GetString("experiment-dir")
	experimentType, _ := cmd.Flags().GetString("experiment-type")
	baseFname, _ := cmd.Flags().GetString("base-fname")
	configFname, _ := cmd.Flags().GetString("config-fname")
	numSeeds, _ := cmd.Flags().GetInt("num-seeds")
	numTotalJobs, _ := cmd.Flags().GetInt("num-total-jobs")
	numJobBatches, _ := cmd.Flags().GetInt("num-job-batches")
	numJobsPerBatch, _ := cmd.Flags().GetInt("num-jobs-per-batch")
	timePerJob, _ := cmd.Flags().GetString("time-per-job")
	numCPUs, _ := cmd.Flags().GetInt("num-cpus")
	numGPUs, _ := cmd.Flags().GetInt("num-gpus")

	return protocol.ExperimentSpec{
		Purpose:         purpose,
		ProjectName:     project,
		ExecResource:    models.ExecResource(resource),
		ExperimentDir:   experimentDir,
		ExperimentType:  models.ExperimentType(experimentType),
		BaseFname:       baseFname,
		ConfigFname:     configFname,
		NumSeeds:        numSeeds,
		NumTotalJobs:    numTotalJobs,
		NumJobBatches:   numJobBatches,
		NumJobsPerBatch: numJobsPerBatch,
		TimePerJob:      timePerJob,
		NumCPUs:         numCPUs,
		NumGPUs:         numGPUs,
	}, nil
}

// parseExtraFields parses extra field strings in key=value format
func parseExtraFields(pairs []string) (map[string]any, error) {
	extra := make(map[string]any)
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid extra field format: %s (expected key=value)", pair)
		}
		extra[parts[0]] = parts[1]
	}
	return extra, nil
}
