package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mdotservice/serviceinfo/modules/inventory/services"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category names and the current reporting period",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, dates, err := a.catalog().Categories(cmd.Context())
			if err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{
				"categories": categories,
				"main_date":  dates,
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var dto services.UpdateFieldDTO
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update one field of an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog().UpdateField(cmd.Context(), dto); err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"status": "ok", "item_id": dto.ItemID, "field": dto.Field})
		},
	}
	cmd.Flags().StringVar(&dto.ItemID, "item-id", "", "Item id (required)")
	cmd.Flags().StringVar(&dto.Field, "field", "", "One of balance, so, iq, sq, extra_remark, item_remark (required)")
	cmd.Flags().StringVar(&dto.Value, "value", "", "New value")
	_ = cmd.MarkFlagRequired("item-id")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var itemID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the remark history of an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.catalog().History(cmd.Context(), itemID)
			if err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"item_id": itemID, "history": lines})
		},
	}
	cmd.Flags().StringVar(&itemID, "item-id", "", "Item id (required)")
	_ = cmd.MarkFlagRequired("item-id")
	return cmd
}

func newMoveToHistoryCmd(a *app) *cobra.Command {
	var itemID, remark string
	cmd := &cobra.Command{
		Use:   "move-to-history",
		Short: "Append a remark to the item's history and clear its extra remark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog().MoveToHistory(cmd.Context(), itemID, remark); err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"status": "ok", "item_id": itemID})
		},
	}
	cmd.Flags().StringVar(&itemID, "item-id", "", "Item id (required)")
	cmd.Flags().StringVar(&remark, "remark", "", "Remark to archive (required)")
	_ = cmd.MarkFlagRequired("item-id")
	_ = cmd.MarkFlagRequired("remark")
	return cmd
}

func newDelistCmd(a *app) *cobra.Command {
	var itemID string
	cmd := &cobra.Command{
		Use:   "delist",
		Short: "Remove an item from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog().Delist(cmd.Context(), itemID); err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"status": "ok", "item_id": itemID})
		},
	}
	cmd.Flags().StringVar(&itemID, "item-id", "", "Item id (required)")
	_ = cmd.MarkFlagRequired("item-id")
	return cmd
}

func newResetAllCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Reset the quantities of every item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, errors.New("reset-all affects every item; pass --yes to confirm"))
			}
			if err := a.catalog().ResetAll(cmd.Context()); err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"status": "ok"})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func newDatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Show or set the reporting period",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the reporting period",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := a.catalog().MainDates(cmd.Context())
			if err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), dates)
		},
	}

	var from, to string
	set := &cobra.Command{
		Use:   "set",
		Short: "Set the reporting period (DD/MM/YYYY)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := a.catalog().SetMainDates(cmd.Context(), from, to)
			if err != nil {
				return serviceErr(err)
			}
			return writeJSONLine(cmd.OutOrStdout(), dates)
		},
	}
	set.Flags().StringVar(&from, "from", "", "First day, DD/MM/YYYY (required)")
	set.Flags().StringVar(&to, "to", "", "Last day, DD/MM/YYYY (required)")
	_ = set.MarkFlagRequired("from")
	_ = set.MarkFlagRequired("to")

	cmd.AddCommand(get, set)
	return cmd
}
