package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iishyfishyy/trigramdb/internal/importer"
	"github.com/iishyfishyy/trigramdb/internal/ui"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a passage and print its id",
		RunE:  runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		if !ui.IsInteractive() {
			return fmt.Errorf("no text given")
		}
		var err error
		if text, err = ui.PromptMultiline("Passage to add:"); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.store.Add(text)
	if err != nil {
		return err
	}
	if err := a.save(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func newGetCmd() *cobra.Command {
	var showModel bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored passage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			entry, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, entry.RawText)
			fmt.Fprintf(out, "\n%s %d\n", ui.Label("trigrams:"), len(entry.Model))

			if showModel {
				data, err := yaml.Marshal(entry.Model)
				if err != nil {
					return fmt.Errorf("failed to render model: %w", err)
				}
				fmt.Fprintf(out, "\n%s", data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showModel, "model", false, "Dump the trigram model as YAML")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <text...>",
		Short: "Replace the text of a stored passage",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.Update(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			if err := a.save(ctx); err != nil {
				return err
			}

			ui.ShowSuccess(fmt.Sprintf("Updated %s", args[0]))
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored passage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			id := args[0]
			entry, err := a.store.Get(id)
			if err != nil {
				return err
			}

			if !yes && ui.IsInteractive() {
				ok, err := ui.Confirm(fmt.Sprintf("Delete %q?", ui.Preview(entry.RawText, ui.PreviewLength)), false)
				if err != nil {
					return err
				}
				if !ok {
					ui.ShowInfo("Cancelled")
					return nil
				}
			}

			if err := a.store.Delete(id); err != nil {
				return err
			}
			if err := a.save(ctx); err != nil {
				return err
			}

			ui.ShowSuccess(fmt.Sprintf("Deleted %s", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored passages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if a.store.Len() == 0 {
				ui.ShowInfo("No passages stored yet. Add one with: trigramdb add \"some text\"")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, id := range a.store.List() {
				entry, err := a.store.Get(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", ui.Label(id), ui.Preview(entry.RawText, ui.PreviewLength))
			}
			fmt.Fprintf(out, "\n%d passages\n", a.store.Len())
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Import passages from a text file or a directory of .md/.txt files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passages, err := importer.NewLoader().Load(args[0])
			if err != nil {
				return err
			}
			if len(passages) == 0 {
				ui.ShowWarning(fmt.Sprintf("No passages found in %s", args[0]))
				return nil
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			added := 0
			for _, p := range passages {
				id, err := a.store.Add(p.Text)
				if err != nil {
					ui.ShowWarning(fmt.Sprintf("Skipped %s: %v", p.Source, err))
					continue
				}
				a.logger.Debug("imported passage", "id", id, "source", p.Source, "title", p.Title, "tags", p.Tags)
				added++
			}

			if err := a.save(ctx); err != nil {
				return err
			}

			ui.ShowSuccess(fmt.Sprintf("Imported %d of %d passages", added, len(passages)))
			return nil
		},
	}
}
