package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const managementScope = "https://management.azure.com/.default"

// NewCredential prefers the Azure CLI login, which the credential step of
// the configurator relies on anyway, and falls back to the default chain
// (environment, workload identity, managed identity).
func NewCredential() (azcore.TokenCredential, error) {
	var chain []azcore.TokenCredential

	cli, err := azidentity.NewAzureCLICredential(nil)
	if err == nil {
		chain = append(chain, cli)
	}
	def, err := azidentity.NewDefaultAzureCredential(nil)
	if err == nil {
		chain = append(chain, def)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}
	return azidentity.NewChainedTokenCredential(chain, nil)
}

// VerifyCredential requests a management token to prove the credential works.
func VerifyCredential(ctx context.Context, cred azcore.TokenCredential) error {
	_, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{managementScope}})
	if err != nil {
		return fmt.Errorf("failed to acquire management token: %w", err)
	}
	return nil
}
