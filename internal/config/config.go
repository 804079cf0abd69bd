package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config carries every setting the toolkit components need. It is built
// once from viper and passed explicitly into constructors; no component
// reads ambient state.
type Config struct {
	ProtocolPath string
	UsagePath    string

	UseGCSSync      bool
	SyncResults     bool
	ProjectName     string
	BucketName      string
	GCSProtocolPath string
	CredentialsPath string
}

func New() *Config {
	return &Config{
		ProtocolPath:    expandHome(viper.GetString("protocol_path")),
		UsagePath:       expandHome(viper.GetString("usage_path")),
		UseGCSSync:      viper.GetBool("use_gcs_sync"),
		SyncResults:     viper.GetBool("sync_results"),
		ProjectName:     viper.GetString("project_name"),
		BucketName:      viper.GetString("bucket_name"),
		GCSProtocolPath: viper.GetString("gcs_protocol_path"),
		CredentialsPath: expandHome(viper.GetString("credentials_path")),
	}
}

func (c *Config) Validate() error {
	if c.ProtocolPath == "" {
		return fmt.Errorf("protocol path is required")
	}

	// Sync settings are only checked when mirroring is enabled
	if c.UseGCSSync || c.SyncResults {
		if c.ProjectName == "" {
			return fmt.Errorf("project name is required when GCS sync is enabled")
		}
		if c.BucketName == "" {
			return fmt.Errorf("bucket name is required when GCS sync is enabled")
		}
	}
	if c.UseGCSSync && c.GCSProtocolPath == "" {
		return fmt.Errorf("GCS protocol path is required when protocol sync is enabled")
	}

	return nil
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
