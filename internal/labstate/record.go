// Package labstate persists what a deployment created so a lab can be
// found and torn down later, including the subscription-scoped objects that
// survive resource group deletion.
package labstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/util/naming"
)

// FileName is the record file inside a lab directory.
const FileName = "lab.yaml"

// ErrNotFound is returned when no record exists for a suffix.
var ErrNotFound = errors.New("lab record not found")

// Status is the lifecycle state of a lab.
type Status string

const (
	StatusDeploying Status = "deploying"
	StatusDeployed  Status = "deployed"
	StatusDegraded  Status = "degraded"
	StatusFailed    Status = "failed"
)

// Record describes one lab instance.
type Record struct {
	Suffix         string `yaml:"suffix"`
	SubscriptionID string `yaml:"subscription_id"`
	Location       string `yaml:"location"`
	ResourceGroup  string `yaml:"resource_group"`
	NamePrefix     string `yaml:"name_prefix"`
	ClusterName    string `yaml:"cluster_name"`
	KeyVaultName   string `yaml:"key_vault_name"`
	Kubeconfig     string `yaml:"kubeconfig"`
	Status         Status `yaml:"status"`

	// Subscription-scoped objects. Empty when the lab never created them.
	PolicyInitiative   string   `yaml:"policy_initiative,omitempty"`
	PolicyDefinitions  []string `yaml:"policy_definitions,omitempty"`
	ActivityLogSetting string   `yaml:"activity_log_setting,omitempty"`
	DefenderPlans      []string `yaml:"defender_plans,omitempty"`

	Outputs   map[string]string `yaml:"outputs,omitempty"`
	CreatedAt string            `yaml:"created_at"`
	UpdatedAt string            `yaml:"updated_at"`
}

// FromParams builds the record of a lab about to be deployed.
func FromParams(p config.Params, now time.Time) *Record {
	prefix := p.NamePrefix()
	ts := now.UTC().Format(time.RFC3339)
	r := &Record{
		Suffix:         p.Suffix,
		SubscriptionID: p.SubscriptionID,
		Location:       p.Location,
		ResourceGroup:  p.ResourceGroup(),
		NamePrefix:     prefix,
		ClusterName:    p.ClusterName(),
		KeyVaultName:   naming.KeyVault(prefix),
		Kubeconfig:     p.KubeconfigPath(),
		Status:         StatusDeploying,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if p.EnableAzurePolicy {
		names := blueprint.PolicyNames(prefix)
		r.PolicyInitiative = names.Initiative
		r.PolicyDefinitions = slices.Clone(names.Definitions)
	}
	if p.RouteActivityLog {
		r.ActivityLogSetting = blueprint.ActivityLogSettingName(p)
	}
	if p.EnableDefender {
		r.DefenderPlans = []string{blueprint.DefenderPlanContainers, blueprint.DefenderPlanKeyVaults}
	}
	return r
}

// Store reads and writes records below Dir, one directory per suffix.
type Store struct {
	Dir string
}

func (s Store) path(suffix string) string {
	return filepath.Join(s.Dir, suffix, FileName)
}

// Save writes r, stamping UpdatedAt.
func (s Store) Save(r *Record, now time.Time) error {
	r.UpdatedAt = now.UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal lab record: %w", err)
	}
	path := s.path(r.Suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create lab directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write lab record: %w", err)
	}
	return nil
}

// Load reads the record for suffix.
func (s Store) Load(suffix string) (*Record, error) {
	data, err := os.ReadFile(s.path(suffix))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, suffix)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lab record: %w", err)
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse lab record %s: %w", s.path(suffix), err)
	}
	return &r, nil
}

// List returns every readable record, sorted by suffix.
func (s Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}
	var records []*Record
	for _, e := range entries {
		if !e.IsDir() || !naming.ValidSuffix(e.Name()) {
			continue
		}
		r, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Delete removes the lab directory, including its kubeconfig and keys.
func (s Store) Delete(suffix string) error {
	if !naming.ValidSuffix(suffix) {
		return fmt.Errorf("invalid lab suffix %q", suffix)
	}
	if err := os.RemoveAll(filepath.Join(s.Dir, suffix)); err != nil {
		return fmt.Errorf("failed to remove lab directory: %w", err)
	}
	return nil
}
