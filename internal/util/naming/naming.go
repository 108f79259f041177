package naming

import (
	"fmt"
	"regexp"
)

// Naming functions for lab resources.
// Every resource of a lab instance derives its name from the lab's name
// prefix so the whole lab can be identified and torn down together. The
// suffix constants are shared with the template generator, which builds the
// same names from the namePrefix template parameter.

const (
	// ResourceGroupPrefix precedes the suffix in the lab resource group name.
	ResourceGroupPrefix = "rg-akslab-"

	// NamePrefixBase precedes the suffix in the name prefix. The prefix stays
	// alphanumeric because container registry names allow nothing else.
	NamePrefixBase = "akslab"

	ClusterSuffix            = "-aks"
	WorkspaceSuffix          = "-law"
	VirtualNetworkSuffix     = "-vnet"
	SecurityGroupSuffix      = "-nsg"
	RegistrySuffix           = "acr"
	KeyVaultSuffix           = "-kv"
	IdentitySuffix           = "-id"
	DataCollectionSuffix     = "-dcr"
	PolicyInitiativeSuffix   = "-baseline"
	PolicyAssignmentSuffix   = "-baseline-assignment"
	ActivityLogSettingSuffix = "-activity"
)

var suffixRegex = regexp.MustCompile(`^[a-z0-9]{6}$`)

// ValidSuffix reports whether s has the shape RandomSuffix produces.
func ValidSuffix(s string) bool {
	return suffixRegex.MatchString(s)
}

func ResourceGroup(suffix string) string {
	return ResourceGroupPrefix + suffix
}

func NamePrefix(suffix string) string {
	return NamePrefixBase + suffix
}

func Cluster(prefix string) string {
	return prefix + ClusterSuffix
}

func Workspace(prefix string) string {
	return prefix + WorkspaceSuffix
}

func VirtualNetwork(prefix string) string {
	return prefix + VirtualNetworkSuffix
}

func Registry(prefix string) string {
	return prefix + RegistrySuffix
}

func KeyVault(prefix string) string {
	return prefix + KeyVaultSuffix
}

func Identity(prefix string) string {
	return prefix + IdentitySuffix
}

func PolicyInitiative(prefix string) string {
	return prefix + PolicyInitiativeSuffix
}

func PolicyDefinition(prefix, rule string) string {
	return fmt.Sprintf("%s-%s", prefix, rule)
}

func ActivityLogSetting(prefix string) string {
	return prefix + ActivityLogSettingSuffix
}

// Deployment names the ARM deployment for one pipeline stage.
func Deployment(prefix, stage string) string {
	return fmt.Sprintf("%s-%s", prefix, stage)
}
