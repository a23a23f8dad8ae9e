package main

import (
	"fmt"
	"strconv"

	"semfilter/internal/filter"

	"github.com/spf13/cobra"
)

var feedbackDirection string

var feedbackCmd = &cobra.Command{
	Use:   "feedback <category-id> <text>",
	Short: "Refine a category with an example text",
	Long: `Nudge a category's representative vector toward (--direction reinforce)
or away from (--direction weaken) the given text. Use reinforce when the
filter missed a text that belongs to the category, weaken when it filtered
a text that does not.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}
		direction := filter.Direction(feedbackDirection)
		if !direction.Valid() {
			return fmt.Errorf("direction must be %q or %q", filter.DirectionReinforce, filter.DirectionWeaken)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.adjuster.Apply(cmd.Context(), userID, categoryID, args[1], direction)
		if err != nil {
			return err
		}
		fmt.Printf("Applied %s feedback to category %d (log %s)\n", direction, categoryID, entry.ID)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackDirection, "direction", "d", string(filter.DirectionReinforce), "reinforce or weaken")
}
