package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/labstate"
)

// List prints every lab recorded in the state directory.
func List(configFile, envFile string) error {
	settings, err := loadSettings(config.SettingsOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	records, err := labstate.Store{Dir: settings.StateDir}.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(stdout, "No labs recorded in %s\n", settings.StateDir)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("LAB", "STATUS", "LOCATION", "RESOURCE GROUP", "UPDATED")
	for _, r := range records {
		t.Row(r.Suffix, string(r.Status), r.Location, r.ResourceGroup, r.UpdatedAt)
	}
	_, err = fmt.Fprintln(stdout, t.String())
	return err
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
