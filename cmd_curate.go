package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pagebuilder/internal/curation"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
)

var (
	curateMode   string
	curateActive string
	curateKey    string
	curateJSON   bool
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Show the category menu for a curation mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := curation.ParseMode(curateMode)
		if err != nil {
			return err
		}
		a, _, cancel, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		view, err := a.Categories.Curate(service.CurateRequest{Mode: mode, ActiveID: curateActive, Key: curateKey})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if curateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}

		fmt.Fprintf(out, "mode: %s\n", view.Mode)
		for _, tab := range view.Tabs {
			marker := " "
			if tab.Active {
				marker = ">"
			}
			fmt.Fprintf(out, "%s %s (%s)\n", marker, tab.Name, tab.ID)
		}
		if view.Detail.Empty || view.Detail.Category == nil {
			fmt.Fprintf(out, "\n%s\n%s\n", view.Detail.Title, view.Detail.Message)
			return nil
		}
		c := view.Detail.Category
		fmt.Fprintf(out, "\n%s\n", c.Name)
		for _, sub := range c.SubCategories {
			fmt.Fprintf(out, "  %s: %d items\n", sub.Title, len(sub.Items))
		}
		if c.PromoText != "" {
			fmt.Fprintf(out, "  promo: %s\n", c.PromoText)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category menu",
}

var categoriesLoadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Create or update categories from a YAML list, in file order",
	Long: `Each entry uses the same keys as the JSON form (id, name, iconKey,
highlights, subCategories, promoText, promoImage). Entries with an existing
id are updated; the menu is then reordered to follow the file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := readCategories(args[0])
		if err != nil {
			return err
		}
		a, _, cancel, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer a.Close()

		existing, err := a.Categories.ListCategories()
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(existing))
		for _, c := range existing {
			known[c.ID] = true
		}

		order := make([]string, 0, len(existing))
		loaded := make(map[string]bool, len(cats))
		for i := range cats {
			c := &cats[i]
			if known[c.ID] {
				err = a.Categories.UpdateCategory(c)
			} else {
				err = a.Categories.CreateCategory(c)
			}
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Name, err)
			}
			order = append(order, c.ID)
			loaded[c.ID] = true
		}
		for _, c := range existing {
			if !loaded[c.ID] {
				order = append(order, c.ID)
			}
		}
		if err := a.Categories.Reorder(order); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d categories\n", len(cats))
		return nil
	},
}

// readCategories decodes YAML through the JSON field names of
// domain.CategoryDetail.
func readCategories(path string) ([]domain.CategoryDetail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var cats []domain.CategoryDetail
	if err := json.Unmarshal(asJSON, &cats); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cats, nil
}

func init() {
	curateCmd.Flags().StringVarP(&curateMode, "mode", "m", "all", "curation mode (all, onsale, bestseller, newest)")
	curateCmd.Flags().StringVar(&curateActive, "active", "", "active category id")
	curateCmd.Flags().StringVar(&curateKey, "key", "", "navigation key to apply (ArrowDown, ArrowUp, Home, End)")
	curateCmd.Flags().BoolVar(&curateJSON, "json", false, "print the full view as JSON")

	categoriesCmd.AddCommand(categoriesLoadCmd)
}
