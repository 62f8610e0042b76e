// Package services holds the inventory use cases: loading a category's
// item tree, reconciling an import table, and the single-item edits.
package services

import (
	"context"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
)

// ItemSource is what the Aggregator reads from.
type ItemSource interface {
	ListItems(ctx context.Context, category string) ([]*item.Item, error)
	ListAdditionalInfo(ctx context.Context, itemID string) ([]*item.AdditionalInfo, error)
	ListLogistic(ctx context.Context, purchasingID, itemID string) ([]*item.LogisticEntry, error)
}

type MainDateAPI interface {
	GetMainDate(ctx context.Context) (item.DateRange, error)
	UpdateMainDate(ctx context.Context, from, to string) error
}

// ImportTarget is what the Reconciler writes to.
type ImportTarget interface {
	MainDateAPI
	ResolveItemID(ctx context.Context, name string) (string, error)
	UpdateItemDetail(ctx context.Context, itemID, iq, sq, balance string) error
}

type CatalogAPI interface {
	MainDateAPI
	ListCategories(ctx context.Context) ([]item.Category, error)
	UpdateField(ctx context.Context, field serviceapi.Field, itemID, value string) error
	MoveRemarkToHistory(ctx context.Context, itemID, remark string) error
	RemarkHistory(ctx context.Context, itemID string) (string, error)
	ResetAllItems(ctx context.Context) error
	DelistItem(ctx context.Context, itemID string) error
}

var (
	_ ItemSource   = (*serviceapi.Client)(nil)
	_ ImportTarget = (*serviceapi.Client)(nil)
	_ CatalogAPI   = (*serviceapi.Client)(nil)
)
