package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variables read by LoadSettings.
const envPrefix = "AKSLAB"

// Settings holds the values read from the environment and akslab.yaml.
// Empty strings mean "not set"; booleans and numbers carry defaults.
type Settings struct {
	SubscriptionID     string            `mapstructure:"subscription_id"`
	Location           string            `mapstructure:"location"`
	AdminGroupObjectID string            `mapstructure:"admin_group_id"`
	AuthorizedIP       string            `mapstructure:"authorized_ip"`
	LogRetentionDays   int               `mapstructure:"log_retention_days"`
	KubernetesVersion  string            `mapstructure:"kubernetes_version"`
	SystemNodeVMSize   string            `mapstructure:"system_node_vm_size"`
	UserNodeVMSize     string            `mapstructure:"user_node_vm_size"`
	EnableDefender     bool              `mapstructure:"enable_defender"`
	EnableAzurePolicy  bool              `mapstructure:"enable_azure_policy"`
	EnableSentinel     bool              `mapstructure:"enable_sentinel_solutions"`
	RouteActivityLog   bool              `mapstructure:"route_activity_log"`
	Tags               map[string]string `mapstructure:"tags"`
	ManifestsDir       string            `mapstructure:"manifests_dir"`
	StateDir           string            `mapstructure:"state_dir"`
	SSHPublicKeyFile   string            `mapstructure:"ssh_public_key_file"`
}

var settingsKeys = []string{
	"location",
	"admin_group_id",
	"authorized_ip",
	"ssh_public_key_file",
}

// SettingsOptions locates the optional input files.
type SettingsOptions struct {
	// ConfigFile is an explicit akslab.yaml path. A named file that does not
	// exist is an error; the default path is optional.
	ConfigFile string
	// EnvFile is an explicit .env path, with the same rule.
	EnvFile string
}

// LoadSettings loads .env into the process environment (never overriding
// variables that are already set), then reads akslab.yaml and AKSLAB_*
// variables. Environment variables take precedence over file values.
func LoadSettings(opts SettingsOptions) (*Settings, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("subscription_id", "AKSLAB_SUBSCRIPTION_ID", "AZURE_SUBSCRIPTION_ID")
	// Unmarshal only sees keys viper knows about, so bind the rest explicitly.
	for _, key := range settingsKeys {
		_ = v.BindEnv(key)
	}

	home, _ := os.UserHomeDir()
	v.SetDefault("log_retention_days", DefaultLogRetentionDays)
	v.SetDefault("kubernetes_version", DefaultKubernetesVersion)
	v.SetDefault("system_node_vm_size", DefaultSystemNodeVMSize)
	v.SetDefault("user_node_vm_size", DefaultUserNodeVMSize)
	v.SetDefault("enable_defender", false)
	v.SetDefault("enable_azure_policy", true)
	v.SetDefault("enable_sentinel_solutions", true)
	v.SetDefault("route_activity_log", true)
	v.SetDefault("manifests_dir", DefaultManifestsDir)
	v.SetDefault("state_dir", filepath.Join(home, DefaultStateDirName))

	configFile := opts.ConfigFile
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", configFile, err)
			}
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &s, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}
