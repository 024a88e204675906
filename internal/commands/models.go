package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/domain"
	"github.com/DevRickLin/wa-gemini-bridge/internal/biz/usecase"
	"github.com/DevRickLin/wa-gemini-bridge/internal/data"
	"github.com/DevRickLin/wa-gemini-bridge/internal/infra/logger"
)

var (
	modelsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8AB4F8"))
	modelNameStyle   = lipgloss.NewStyle().Width(44)
	modelPickedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#81C995"))
	modelMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA0A6"))
)

func newModelsCmd(flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List Gemini models that can generate content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

			repos, err := data.NewRepositories(ctx, cfg.ToDataOptions())
			if err != nil {
				return fmt.Errorf("create repositories: %w", err)
			}

			selector := usecase.NewSelectorUsecase(repos.Catalog, cfg.ToSelectorConfig(), log)
			candidates, err := selector.Candidates(ctx)
			if err != nil {
				return err
			}

			picked := domain.NormalizeModelID(cfg.Gemini.Model)
			if picked.IsZero() {
				picked, _ = domain.PickModel(candidates, cfg.Gemini.FastMarker)
			}
			printModels(cmd.OutOrStdout(), candidates, picked)
			return nil
		},
	}
}

// printModels writes one line per model, marking the one the bridge would use
func printModels(out io.Writer, models []domain.Model, picked domain.ModelID) {
	fmt.Fprintln(out, modelsTitleStyle.Render(fmt.Sprintf("Gemini models (%d)", len(models))))
	if len(models) == 0 {
		fmt.Fprintln(out, modelMutedStyle.Render("  none support generateContent"))
		return
	}

	for _, m := range models {
		id := domain.NormalizeModelID(m.Name)
		name := modelNameStyle.Render(id.String())
		if id == picked {
			fmt.Fprintf(out, "%s %s%s\n", modelPickedStyle.Render("*"), modelPickedStyle.Render(name), m.DisplayName)
			continue
		}
		fmt.Fprintf(out, "  %s%s\n", name, modelMutedStyle.Render(m.DisplayName))
	}
}
