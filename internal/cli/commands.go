package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/app"
	"github.com/Makepad-fr/tada/internal/ui"
)

// controller restores the list quietly and returns a controller that prints
// to the command's stdout. Each mutation then prints the list once.
func (r *runner) controller(cmd *cobra.Command, group bool) (*app.Controller, *PanelView, error) {
	if err := r.store.Restore(); err != nil {
		return nil, nil, err
	}
	view := NewPanelView(cmd.OutOrStdout(), r.order(), group)
	return app.New(r.store, view, app.WithLogger(r.log)), view, nil
}

func (r *runner) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a new item (text can be multiple words)",
		Example: `  tada add "Buy milk"
  tada add Walk the dog`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return usagef("usage: "+cmd.UseLine(), "add: empty text")
			}
			ctrl, _, err := r.controller(cmd, false)
			if err != nil {
				return err
			}
			if err := ctrl.Submit(text); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "added")
			return nil
		},
	}
}

func (r *runner) lsCmd() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, view, err := r.controller(cmd, group)
			if err != nil {
				return err
			}
			view.Render(r.store)
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func (r *runner) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Short:   "Toggle done for the item with that id",
		Example: "  tada done 2",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := r.controller(cmd, false)
			if err != nil {
				return err
			}
			if err := ctrl.Toggle(args[0]); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "toggled")
			return nil
		},
	}
}

func (r *runner) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Short:   "Remove the item with that id",
		Example: "  tada rm 3",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := r.controller(cmd, false)
			if err != nil {
				return err
			}
			if err := ctrl.Delete(args[0]); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

func (r *runner) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, _, err := r.controller(cmd, false)
			if err != nil {
				return err
			}
			if err := ctrl.ClearAll(); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}
}

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func (r *runner) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the list as JSON or YAML to stdout",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatJSON && format != formatYAML {
				return usagef("usage: "+cmd.UseLine(), "export: unknown format %q (want json or yaml)", format)
			}
			if err := r.store.Restore(); err != nil {
				return err
			}
			return export(cmd.OutOrStdout(), format, r.store.Items())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format (json|yaml)")
	return cmd
}

func export(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		return nil
	}
}
