package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage texts that are never filtered",
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Whitelist a text (exact match)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.AddWhitelist(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Whitelisted %q\n", args[0])
		return nil
	},
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted texts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.store.ListWhitelist(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Whitelist is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%q\n", e.Text)
		}
		return nil
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "rm <text>",
	Short: "Remove a text from the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.RemoveWhitelist(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %q from whitelist\n", args[0])
		return nil
	},
}

func init() {
	whitelistCmd.AddCommand(whitelistAddCmd)
	whitelistCmd.AddCommand(whitelistListCmd)
	whitelistCmd.AddCommand(whitelistRemoveCmd)
}
