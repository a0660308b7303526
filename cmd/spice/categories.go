package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add and delete the income and expense categories drafts are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'spice categories add' to create one."))
				return nil
			}
			fmt.Fprintln(out, cli.RenderCategories(categories))
			return nil
		},
	}
}

func parseCategoryType(s string) (model.CategoryType, error) {
	switch t := model.CategoryType(strings.ToLower(strings.TrimSpace(s))); t {
	case model.CategoryTypeIncome, model.CategoryTypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("invalid category type %q (want income or expense)", s)
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		icon         string
		color        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a category. Adding a deleted category's name brings it back.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseCategoryType(categoryType)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			category, err := store.CreateCategory(ctx, args[0], typ, icon, color)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (ID: %d)", category.Type, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", string(model.CategoryTypeExpense), "Category type (income, expense)")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon shown next to the name")
	cmd.Flags().StringVar(&color, "color", "", "Display color, e.g. #FF6B6B")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Deactivate a category. Its history is kept but new drafts no longer suggest it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category ID: %w", err)
			}

			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintf(out, "Are you sure you want to delete category %d? (y/N): ", id)
				var response string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if strings.ToLower(response) != "y" {
					fmt.Fprintln(out, "Deletion cancelled.")
					return nil
				}
			}

			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteCategory(ctx, id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
