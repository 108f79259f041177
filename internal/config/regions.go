package config

import (
	"fmt"
	"slices"
	"strings"
)

// SupportedRegions is the allow-list of Azure regions a lab may be deployed
// to. Every region offers AKS, Sentinel and availability zones.
var SupportedRegions = []string{
	"australiaeast",
	"canadacentral",
	"centralus",
	"eastus",
	"eastus2",
	"francecentral",
	"germanywestcentral",
	"japaneast",
	"northeurope",
	"southeastasia",
	"swedencentral",
	"uksouth",
	"westeurope",
	"westus2",
	"westus3",
}

// NormalizeRegion converts display names such as "West Europe" to the
// programmatic region name and checks it against SupportedRegions.
func NormalizeRegion(input string) (string, error) {
	region := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(input), " ", ""))
	if region == "" {
		return "", fmt.Errorf("region is required")
	}
	if !slices.Contains(SupportedRegions, region) {
		return "", fmt.Errorf("region %q is not supported (supported: %s)", input, strings.Join(SupportedRegions, ", "))
	}
	return region, nil
}
