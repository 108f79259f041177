package config

// Defaults for optional deployment parameters.
const (
	DefaultLogRetentionDays  = 30
	DefaultKubernetesVersion = "1.32"
	DefaultSystemNodeVMSize  = "Standard_D2s_v5"
	DefaultUserNodeVMSize    = "Standard_D4s_v5"
	DefaultManifestsDir      = "manifests"
	DefaultConfigFile        = "akslab.yaml"
	DefaultEnvFile           = ".env"
	DefaultStateDirName      = ".akslab"

	// MinLogRetentionDays and MaxLogRetentionDays bound the workspace
	// retention accepted by Log Analytics.
	MinLogRetentionDays = 30
	MaxLogRetentionDays = 730
)

// ManifestFiles is the fixed apply order for post-deploy manifests,
// relative to the manifests directory.
var ManifestFiles = []string{
	"00-namespaces.yaml",
	"10-network-policies.yaml",
	"20-rbac.yaml",
	"30-pod-security.yaml",
	"40-workloads.yaml",
}

// maxPromptAttempts bounds how often one field is re-prompted after
// invalid input before the collector gives up.
const maxPromptAttempts = 5
