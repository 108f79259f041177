package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/imamik/akslab/internal/util/async"
	"github.com/imamik/akslab/internal/util/prerequisites"
)

// Check states shown by doctor.
const (
	checkOK       = "ok"
	checkMissing  = "missing"
	checkFailed   = "failed"
	checkOptional = "not installed"
)

// DoctorReport is the outcome of the environment checks.
type DoctorReport struct {
	Tools      *prerequisites.CheckResults
	Credential error
	Account    string
	AccountErr error
}

// Healthy reports whether a deploy can start.
func (r DoctorReport) Healthy() bool {
	return !r.Tools.HasErrors() && r.Credential == nil
}

// Doctor checks client tools, the Azure credential and the CLI login.
func Doctor(ctx context.Context) error {
	r := DoctorReport{Tools: checkAllPrereqs()}

	_ = async.Run(ctx, []async.Task{
		{Name: "credential", Func: func(ctx context.Context) error {
			cred, err := newCredential()
			if err == nil {
				err = verifyCredential(ctx, cred)
			}
			r.Credential = err
			return err
		}},
		{Name: "account", Func: func(ctx context.Context) error {
			acct, err := newAzureCLI().ShowAccount(ctx)
			if err != nil {
				r.AccountErr = err
				return err
			}
			r.Account = fmt.Sprintf("%s (%s) as %s", acct.Name, acct.SubscriptionID, acct.User.Name)
			return nil
		}},
	})

	renderDoctor(stdout, r)
	if !r.Healthy() {
		return fmt.Errorf("environment is not ready for akslab deploy")
	}
	return nil
}

func renderDoctor(w io.Writer, r DoctorReport) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("CHECK", "STATUS", "DETAIL")

	for _, res := range r.Tools.Results {
		status, detail := checkOK, res.Version
		if !res.Found {
			status, detail = checkOptional, res.Tool.InstallURL
			if res.Tool.Required {
				status = checkMissing
			}
		}
		t.Row(res.Tool.Name, status, detail)
	}

	if r.Credential != nil {
		t.Row("azure credential", checkFailed, firstLine(r.Credential.Error()))
	} else {
		t.Row("azure credential", checkOK, "management token acquired")
	}
	if r.AccountErr != nil {
		t.Row("az login", checkFailed, "run az login")
	} else {
		t.Row("az login", checkOK, r.Account)
	}

	fmt.Fprintln(w, t.String())
}
