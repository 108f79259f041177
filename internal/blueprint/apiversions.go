package blueprint

// API versions used in generated templates.
const (
	apiDeployments     = "2022-09-01"
	apiWorkspaces      = "2022-10-01"
	apiNetwork         = "2023-09-01"
	apiRegistry        = "2023-07-01"
	apiKeyVault        = "2023-07-01"
	apiIdentity        = "2023-01-31"
	apiAuthorization   = "2022-04-01"
	apiManagedClusters = "2024-05-01"
	apiDiagnostics     = "2021-05-01-preview"
	apiDataCollection  = "2022-06-01"
	apiSecurityInsight = "2024-03-01"
	apiPolicy          = "2023-04-01"
	apiPricings        = "2024-01-01"
)

// Built-in role definition IDs.
const (
	roleNetworkContributor = "4d97b98b-1d4f-4787-a291-c67834d212e7"
	roleAcrPull            = "7f951dda-4ed3-4680-a7ca-43fe172d538d"
)
