package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"semfilter/internal/filter"
	"semfilter/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	categoryName        string
	categoryDescription string
	categoryExamples    []string
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage semantic categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a category from example sentences",
	Long: `Create a category whose representative vector is the normalized mean of
the example sentences' embeddings. Give several varied examples of text
that belongs to the category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := createCategory(cmd.Context(), a, categoryName, categoryDescription, categoryExamples)
		if err != nil {
			return err
		}
		fmt.Printf("Created category %q (id %d)\n", categoryName, id)
		return nil
	},
}

var categoryImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create categories from a YAML file",
	Long: `Create categories in bulk from a YAML file of the form:

  categories:
    - name: politics
      description: election talk
      examples:
        - "The candidate held a rally downtown."
        - "Parliament passed the controversial bill."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var file categoryImportFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if len(file.Categories) == 0 {
			return fmt.Errorf("%s defines no categories", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, entry := range file.Categories {
			id, err := createCategory(cmd.Context(), a, entry.Name, entry.Description, entry.Examples)
			if err != nil {
				return fmt.Errorf("category %q: %w", entry.Name, err)
			}
			fmt.Printf("Created category %q (id %d)\n", entry.Name, id)
		}
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		categories, err := a.store.ListCategories(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			fmt.Println("No categories.")
			return nil
		}
		for _, c := range categories {
			fmt.Printf("%-6d %-20s %s\n", c.ID, c.Name, c.Description)
		}
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.DeleteCategory(cmd.Context(), userID, id); err != nil {
			return err
		}
		// The cached snapshot still holds the deleted category.
		a.categories.Invalidate(userID)
		fmt.Printf("Deleted category %d\n", id)
		return nil
	},
}

type categoryImportFile struct {
	Categories []categoryImportEntry `yaml:"categories"`
}

type categoryImportEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Examples    []string `yaml:"examples"`
}

func createCategory(ctx context.Context, a *app, name, description string, examples []string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("category name is required")
	}

	vec, err := filter.Representative(ctx, a.embedder, a.codec, examples)
	if err != nil {
		return 0, err
	}
	blob, err := a.codec.Serialize(vec)
	if err != nil {
		return 0, err
	}

	c := &store.Category{
		UserID:      userID,
		Name:        name,
		Description: description,
		Embedding:   blob,
	}
	if err := a.store.CreateCategory(ctx, c); err != nil {
		return 0, err
	}
	a.categories.Invalidate(userID)
	return c.ID, nil
}

func init() {
	categoryAddCmd.Flags().StringVarP(&categoryName, "name", "n", "", "category name (required)")
	categoryAddCmd.Flags().StringVarP(&categoryDescription, "description", "d", "", "category description")
	categoryAddCmd.Flags().StringArrayVarP(&categoryExamples, "example", "e", nil, "example sentence (repeatable, required)")
	categoryAddCmd.MarkFlagRequired("name")
	categoryAddCmd.MarkFlagRequired("example")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryImportCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRemoveCmd)
}
