package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/modules/inventory/services"
)

type itemsOptions struct {
	category string
	query    string
	fuzzy    bool
}

func newItemsCmd(a *app) *cobra.Command {
	var opts itemsOptions
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Load a category's items with their batches and logistic entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.category, "category", "", "Category name (required)")
	cmd.Flags().StringVar(&opts.query, "query", "", "Keep only items whose name or id contains this text")
	cmd.Flags().BoolVar(&opts.fuzzy, "fuzzy", false, "Rank --query matches fuzzily instead of by substring")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runItems(cmd *cobra.Command, a *app, opts itemsOptions) error {
	a.bus.Subscribe(func(e *services.ItemLoadFinished) {
		entry := a.log.WithFields(logrus.Fields{"item_id": e.ItemID, "batches": e.Batches})
		if e.Err != "" {
			entry.Warn(e.Err)
			return
		}
		entry.Info("item loaded")
	})

	agg := services.NewAggregator(a.api, services.AggregatorOptions{
		MaxConcurrency: a.cfg.Aggregator.MaxConcurrency,
		Bus:            a.bus,
		Logger:         a.log,
	})
	tree, err := agg.LoadCategoryItems(cmd.Context(), opts.category)
	if err != nil {
		return withCode(exitRemote, err)
	}
	if tree == nil {
		tree = &item.Tree{Category: opts.category, Items: []*item.Item{}}
	}

	out := *tree
	if opts.fuzzy {
		out.Items = item.FuzzyFilter(tree.Items, opts.query)
	} else {
		out.Items = item.Filter(tree.Items, opts.query)
	}
	return writeJSONLine(cmd.OutOrStdout(), out)
}
