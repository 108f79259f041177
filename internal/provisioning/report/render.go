package report

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/imamik/akslab/internal/provisioning"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
)

const nextStepsTemplate = `Next steps:
{{- if .CredentialsOK }}
  Use the cluster:
    export KUBECONFIG={{ .Kubeconfig | squote }}
    kubectl get nodes
{{- else }}
  Bind a kubeconfig to the cluster:
    {{ .FollowUp | default "az aks get-credentials" }}
{{- end }}
{{- range .Manifests }}{{ if ne (toString .Status) "applied" }}
  Apply {{ base .Path }} by hand:
    {{ .FollowUp }}
{{- end }}{{ end }}
  Push images to the registry:
    az acr login --name {{ .Registry | trimSuffix ".azurecr.io" }}
  List lab resources:
    az resource list --resource-group {{ .ResourceGroup }} --output table
  Tear the lab down:
    akslab destroy --lab {{ .Suffix }}
`

var nextSteps = template.Must(template.New("next-steps").
	Funcs(sprig.TxtFuncMap()).
	Option("missingkey=zero").
	Parse(nextStepsTemplate))

// Render writes the summary tables, next-step commands and completion
// message to w.
func Render(w io.Writer, s Summary) error {
	values := newTable("RESOURCE", "VALUE", "SOURCE")
	for _, r := range s.Rows {
		values.Row(r.Label, r.Value, string(r.Source))
	}
	if _, err := fmt.Fprintln(w, values.String()); err != nil {
		return err
	}

	if len(s.Manifests) > 0 {
		manifests := newTable("MANIFEST", "STATUS", "DETAIL")
		for _, m := range s.Manifests {
			manifests.Row(manifestName(m.Path), string(m.Status), manifestDetail(m))
		}
		if _, err := fmt.Fprintln(w, manifests.String()); err != nil {
			return err
		}
	}

	var steps strings.Builder
	if err := nextSteps.Execute(&steps, s); err != nil {
		return fmt.Errorf("failed to render next steps: %w", err)
	}
	if _, err := fmt.Fprintln(w, steps.String()); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, successStyle.Render(CompletedMessage)); err != nil {
		return err
	}
	if s.Degraded() {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("Completed with %d warning(s); values marked %q were not produced:", len(s.Warnings), NotAvailable)))
		for _, warning := range s.Warnings {
			fmt.Fprintf(w, "  - %s\n", firstLine(warning))
		}
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Phase prints the summary. It never fails the run.
type Phase struct {
	Out io.Writer
}

// NewPhase creates the report stage writing to out.
func NewPhase(out io.Writer) *Phase {
	return &Phase{Out: out}
}

// Name implements the provisioning.Phase interface.
func (p *Phase) Name() string {
	return "report"
}

// Provision implements the provisioning.Phase interface.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	s := Build(ctx.Params, ctx.State)
	if err := Render(p.Out, s); err != nil {
		ctx.Observer.Printf("[report] failed to write summary: %v", err)
	}
	return nil
}
