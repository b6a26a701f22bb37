package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/theme"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the colour theme",
		Long: `Show or change the colour theme.

The mode is light, dark or auto. Auto follows the appearance setting
(appearance.system in the config, or FINTRACK_APPEARANCE), which in turn
defaults to the terminal background.`,
		Args: cobra.NoArgs,
		RunE: runThemeShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE:  runThemeShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set MODE",
		Short:     "Set the theme mode (light, dark, auto)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.ModeLight), string(theme.ModeDark), string(theme.ModeAuto)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := theme.ParseMode(args[0])
			if err != nil {
				return common.NewUserError("mode must be light, dark or auto", err)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.resolver.SetMode(cmd.Context(), mode); err != nil {
				return common.NewUserError("could not change theme", err)
			}
			a.refreshPrinter(cmd)
			a.printer.Println(a.printer.FormatSuccess("Tema: " + describeTheme(a.resolver.Theme())))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Cycle light → dark → auto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.resolver.Toggle(cmd.Context())
			a.refreshPrinter(cmd)
			a.printer.Println(a.printer.FormatSuccess("Tema: " + describeTheme(a.resolver.Theme())))
			return nil
		},
	})

	return cmd
}

func runThemeShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t := a.resolver.Theme()
	a.printer.Println(a.printer.FormatInfo("Tema: " + describeTheme(t)))
	a.printer.Println(renderSwatches(t))
	return nil
}

func describeTheme(t theme.Theme) string {
	shade := "claro"
	if t.IsDark {
		shade = "oscuro"
	}
	return fmt.Sprintf("%s (%s)", t.Mode, shade)
}

func renderSwatches(t theme.Theme) string {
	s := t.Styles
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		s.Income.Render("ingreso"),
		s.Expense.Render("gasto"),
		s.Success.Render("éxito"),
		s.Warning.Render("aviso"),
		s.Muted.Render("primario "+t.Palette[theme.Primary]))
}
