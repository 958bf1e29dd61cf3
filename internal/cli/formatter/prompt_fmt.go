package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/pursuit/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// FormatPromptVersions lists saved prompt versions, newest first, marking
// the active one. now anchors the relative timestamps.
func FormatPromptVersions(versions []domain.PromptVersion, activeID string, now time.Time) string {
	if len(versions) == 0 {
		return Dim("No saved prompt versions. The default prompt is in use.") + "\n"
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("", "ID", "SAVED", "PREVIEW").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleHeader.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		marker := " "
		if v.ID == activeID {
			marker = StyleGreen.Render("●")
		}
		t.Row(marker, v.ID, HumanTimestamp(v.CreatedAt, now), Truncate(v.Content, 50))
	}
	return t.String() + "\n"
}

// FormatActivePrompt renders the active prompt text with its origin.
func FormatActivePrompt(text, activeID string, isDefault bool) string {
	origin := "saved version " + activeID
	switch {
	case isDefault:
		origin = "default prompt"
	case activeID == "":
		origin = "custom text"
	}
	return fmt.Sprintf("%s %s\n\n%s\n", Dim("Active:"), StyleBlue.Render(origin), strings.TrimRight(text, "\n"))
}
