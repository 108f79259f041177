package config

import (
	"context"
	"fmt"
	"net/netip"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/util/keygen"
	"github.com/imamik/akslab/internal/util/labels"
	"github.com/imamik/akslab/internal/util/naming"
)

// Question describes one free-text prompt.
type Question struct {
	Title       string
	Description string
	Placeholder string
	// Suggestions are offered for completion.
	Suggestions []string
	// Problem explains why the previous answer was rejected. It is empty on
	// the first attempt.
	Problem string
}

// Choice is one entry of a selection menu.
type Choice struct {
	Label string
	Value string
}

// Prompter asks the user for values.
type Prompter interface {
	Input(ctx context.Context, q Question) (string, error)
	Select(ctx context.Context, title string, choices []Choice) (string, error)
}

// Subscription is an Azure subscription visible to the caller.
type Subscription struct {
	ID    string
	Name  string
	State string
}

// SubscriptionLister lists the subscriptions the caller can deploy to.
type SubscriptionLister interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
}

// IPDetector looks up the caller's public IPv4 address.
type IPDetector interface {
	PublicIPv4(ctx context.Context) (netip.Addr, error)
}

// Options are the values given on the command line. Empty strings and a nil
// EnableDefender mean the flag was not set.
type Options struct {
	SubscriptionID     string
	Location           string
	AdminGroupObjectID string
	AuthorizedIP       string
	EnableDefender     *bool
	ManifestsDir       string
	SSHPublicKeyFile   string
	Tags               []string
}

// Result is the collected parameter set plus where each value came from.
type Result struct {
	Params  Params
	Sources map[string]Source
	// Warnings are non-fatal problems hit while resolving, such as a failed
	// public IP lookup.
	Warnings []string
}

// Collector resolves a Params value from flags, settings, detection,
// prompts and defaults.
type Collector struct {
	Settings Settings
	// Prompter is only used when Interactive is set.
	Prompter      Prompter
	Interactive   bool
	Subscriptions SubscriptionLister
	IPDetector    IPDetector

	// NewSuffix generates the lab identifier. Defaults to naming.RandomSuffix.
	NewSuffix func() string
	// SSHKey returns the authorized key for the node linux profile.
	// Defaults to reading publicKeyFile or generating a pair in labDir.
	SSHKey func(publicKeyFile, labDir string) (string, error)
}

// field describes how one string parameter is resolved.
type field struct {
	name      string
	flag      string
	config    string
	detect    *Candidate[string]
	question  Question
	hint      string
	normalize func(string) (string, error)
}

func (c *Collector) interactive() bool {
	return c.Interactive && c.Prompter != nil
}

// Collect resolves and validates every parameter. Values given explicitly
// are never prompted for.
func (c *Collector) Collect(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{Sources: make(map[string]Source)}
	s := c.Settings

	newSuffix := c.NewSuffix
	if newSuffix == nil {
		newSuffix = naming.RandomSuffix
	}
	p := Params{Suffix: newSuffix()}

	sub, err := c.resolveSubscription(ctx, opts, res)
	if err != nil {
		return nil, err
	}
	p.SubscriptionID = sub

	location, err := c.resolveField(ctx, field{
		name:   "location",
		flag:   opts.Location,
		config: s.Location,
		question: Question{
			Title:       "Azure region",
			Description: "Region for the lab resource group and all resources",
			Placeholder: "westeurope",
			Suggestions: SupportedRegions,
		},
		hint:      "pass --location or set AKSLAB_LOCATION",
		normalize: NormalizeRegion,
	})
	if err != nil {
		return nil, err
	}
	p.Location = location.Value
	res.Sources["location"] = location.Source

	group, err := c.resolveField(ctx, field{
		name:   "adminGroupObjectId",
		flag:   opts.AdminGroupObjectID,
		config: s.AdminGroupObjectID,
		question: Question{
			Title:       "Cluster admin group",
			Description: "Object ID of the Entra ID group granted cluster-admin",
			Placeholder: "00000000-0000-0000-0000-000000000000",
		},
		hint:      "pass --admin-group-id or set AKSLAB_ADMIN_GROUP_ID",
		normalize: normalizeUUID,
	})
	if err != nil {
		return nil, err
	}
	p.AdminGroupObjectID = group.Value
	res.Sources["adminGroupObjectId"] = group.Source

	ip, err := c.resolveField(ctx, field{
		name:   "authorizedIpRange",
		flag:   opts.AuthorizedIP,
		config: s.AuthorizedIP,
		detect: c.detectPublicIP(ctx, res),
		question: Question{
			Title:       "Authorized IP",
			Description: "IPv4 address or CIDR allowed to reach the cluster API server",
			Placeholder: "203.0.113.10",
		},
		hint:      "pass --authorized-ip or set AKSLAB_AUTHORIZED_IP",
		normalize: NormalizeAuthorizedIP,
	})
	if err != nil {
		return nil, err
	}
	p.AuthorizedIPRange = ip.Value
	res.Sources["authorizedIpRange"] = ip.Source

	defender, _ := Resolve(
		Func(SourceFlag, func() (bool, bool, error) {
			if opts.EnableDefender == nil {
				return false, false, nil
			}
			return *opts.EnableDefender, true, nil
		}),
		Candidate[bool]{Source: SourceConfig, Lookup: func() (bool, bool, error) { return s.EnableDefender, true, nil }},
	)
	p.EnableDefender = defender.Value
	res.Sources["enableDefender"] = defender.Source

	p.EnableAzurePolicy = s.EnableAzurePolicy
	p.EnableSentinelSolutions = s.EnableSentinel
	p.RouteActivityLog = s.RouteActivityLog
	p.LogRetentionDays = s.LogRetentionDays
	p.KubernetesVersion = s.KubernetesVersion
	p.SystemNodeVMSize = s.SystemNodeVMSize
	p.UserNodeVMSize = s.UserNodeVMSize
	p.StateDir = s.StateDir

	flagTags, err := labels.Parse(opts.Tags)
	if err != nil {
		return nil, failure.InvalidParameter("tags", strings.Join(opts.Tags, ","), err)
	}
	p.Tags = labels.NewTagBuilder(p.Suffix).Merge(s.Tags).Merge(flagTags).Build()

	dir, _ := Resolve(Given(SourceFlag, opts.ManifestsDir), Given(SourceConfig, s.ManifestsDir), Default(DefaultManifestsDir))
	res.Sources["manifestsDir"] = dir.Source
	for _, name := range ManifestFiles {
		p.Manifests = append(p.Manifests, filepath.Join(dir.Value, name))
	}

	keyFile, _ := Resolve(Given(SourceFlag, opts.SSHPublicKeyFile), Given(SourceConfig, s.SSHPublicKeyFile))
	sshKey := c.SSHKey
	if sshKey == nil {
		sshKey = defaultSSHKey
	}
	p.SSHPublicKey, err = sshKey(keyFile.Value, p.LabDir())
	if err != nil {
		if keyFile.Found() {
			return nil, failure.MissingFile(keyFile.Value, err)
		}
		return nil, fmt.Errorf("generating SSH key: %w", err)
	}

	p = p.clone()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res.Params = p
	return res, nil
}

// resolveField walks flag, config, detection and prompt for one field.
// An invalid explicit value re-prompts when interactive and is an
// InvalidParameter error otherwise.
func (c *Collector) resolveField(ctx context.Context, f field) (Resolved[string], error) {
	var problem string
	check := func(cand Candidate[string]) Candidate[string] {
		return Func(cand.Source, func() (string, bool, error) {
			v, ok, err := cand.Lookup()
			if err != nil || !ok {
				return "", false, err
			}
			n, verr := f.normalize(v)
			if verr == nil {
				return n, true, nil
			}
			if !c.interactive() {
				return "", false, failure.InvalidParameter(f.name, v, verr)
			}
			problem = verr.Error()
			return "", false, nil
		})
	}

	chain := []Candidate[string]{
		check(Given(SourceFlag, f.flag)),
		check(Given(SourceConfig, f.config)),
	}
	if f.detect != nil {
		detect := check(*f.detect)
		chain = append(chain, Func(detect.Source, func() (string, bool, error) {
			// A rejected explicit value goes to the prompt, not detection.
			if problem != "" {
				return "", false, nil
			}
			return detect.Lookup()
		}))
	}
	if c.interactive() {
		chain = append(chain, Func(SourcePrompt, func() (string, bool, error) {
			v, err := c.ask(ctx, f, problem)
			return v, err == nil, err
		}))
	}

	r, err := Resolve(chain...)
	if err != nil {
		return r, err
	}
	if !r.Found() {
		return r, failure.MissingParameter(f.name, f.hint)
	}
	return r, nil
}

// ask prompts until the answer normalizes or the attempts run out.
func (c *Collector) ask(ctx context.Context, f field, problem string) (string, error) {
	q := f.question
	var answer string
	for range maxPromptAttempts {
		q.Problem = problem
		var err error
		answer, err = c.Prompter.Input(ctx, q)
		if err != nil {
			return "", fmt.Errorf("prompt for %s: %w", f.name, err)
		}
		v, verr := f.normalize(answer)
		if verr == nil {
			return v, nil
		}
		problem = verr.Error()
	}
	return "", failure.InvalidParameter(f.name, answer,
		fmt.Errorf("no valid value after %d attempts: %s", maxPromptAttempts, problem))
}

// resolveSubscription uses an explicit subscription as given, auto-selects
// the only visible one, and shows a menu when there are several.
func (c *Collector) resolveSubscription(ctx context.Context, opts Options, res *Result) (string, error) {
	const name = "subscriptionId"

	explicit, _ := Resolve(Given(SourceFlag, opts.SubscriptionID), Given(SourceConfig, c.Settings.SubscriptionID))
	if explicit.Found() {
		id, err := normalizeUUID(explicit.Value)
		if err != nil {
			return "", failure.InvalidParameter(name, explicit.Value, err)
		}
		res.Sources[name] = explicit.Source
		return id, nil
	}

	if c.Subscriptions == nil {
		return "", failure.MissingParameter(name, "pass --subscription-id or set AZURE_SUBSCRIPTION_ID")
	}
	subs, err := c.Subscriptions.ListSubscriptions(ctx)
	if err != nil {
		return "", fmt.Errorf("listing subscriptions: %w", err)
	}

	switch {
	case len(subs) == 0:
		return "", failure.MissingParameter(name, "no subscriptions are visible to the signed-in account; run az login")
	case len(subs) == 1:
		res.Sources[name] = SourceDetected
		return subs[0].ID, nil
	case !c.interactive():
		ids := make([]string, 0, len(subs))
		for _, s := range subs {
			ids = append(ids, fmt.Sprintf("%s (%s)", s.ID, s.Name))
		}
		return "", failure.MissingParameter(name,
			"several subscriptions are visible, pass --subscription-id with one of: "+strings.Join(ids, ", "))
	}

	choices := make([]Choice, 0, len(subs))
	for i, s := range subs {
		choices = append(choices, Choice{
			Label: fmt.Sprintf("[%d] %s (%s)", i+1, s.Name, s.ID),
			Value: s.ID,
		})
	}
	id, err := c.Prompter.Select(ctx, "Select a subscription", choices)
	if err != nil {
		return "", fmt.Errorf("prompt for subscription: %w", err)
	}
	if id == "" {
		return "", failure.MissingParameter(name, "select one of the listed subscriptions")
	}
	res.Sources[name] = SourcePrompt
	return id, nil
}

// detectPublicIP returns the detection candidate for the authorized IP.
// Lookup failures fall through to the next source and leave a warning.
func (c *Collector) detectPublicIP(ctx context.Context, res *Result) *Candidate[string] {
	if c.IPDetector == nil {
		return nil
	}
	cand := Func(SourceDetected, func() (string, bool, error) {
		addr, err := c.IPDetector.PublicIPv4(ctx)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("public IP detection failed, falling back to manual entry: %v", err))
			return "", false, nil
		}
		return addr.String(), true, nil
	})
	return &cand
}

func normalizeUUID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("must be a GUID: %w", err)
	}
	return id.String(), nil
}

func defaultSSHKey(publicKeyFile, labDir string) (string, error) {
	if publicKeyFile != "" {
		return keygen.ReadPublicKey(publicKeyFile)
	}
	kp, err := keygen.LoadOrGenerate(filepath.Join(labDir, "ssh"), keygen.DefaultBits)
	if err != nil {
		return "", err
	}
	return kp.AuthorizedKey(), nil
}
