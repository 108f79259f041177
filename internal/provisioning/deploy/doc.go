// Package deploy submits the lab templates to Azure Resource Manager.
//
// The resource-group deployment carries the whole module graph and is the
// one stage whose failure aborts the run. The subscription deployment
// (Defender pricing and activity log routing) is best-effort: its result is
// recorded as a typed SubscriptionOutcome and never stops the pipeline.
package deploy
