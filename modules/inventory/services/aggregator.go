package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
	"github.com/mdotservice/serviceinfo/pkg/eventbus"
	"github.com/mdotservice/serviceinfo/pkg/logging"
)

// ErrSuperseded is returned by a load that finished after a newer load
// had started. Its tree is discarded.
var ErrSuperseded = errors.New("category load superseded by a newer request")

const additionalInfoErrorPrefix = "Failed to load additional information. "

type AggregatorOptions struct {
	MaxConcurrency int
	Bus            eventbus.EventBus
	Logger         *logrus.Entry
}

// Aggregator assembles the item tree of a category: items, their batches
// and each batch's logistic entries.
type Aggregator struct {
	api  ItemSource
	opts AggregatorOptions

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *item.Tree
}

func NewAggregator(api ItemSource, opts AggregatorOptions) *Aggregator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New(opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Aggregator{api: api, opts: opts}
}

// Current returns the last committed tree, or nil before the first load.
func (a *Aggregator) Current() *item.Tree {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// LoadCategoryItems fetches the items of category and, concurrently per
// item, their batches and logistic entries. It returns once every item has
// settled. Failures below the item list are recorded on the item or batch
// and never fail the load. Starting a load cancels any load in flight.
func (a *Aggregator) LoadCategoryItems(ctx context.Context, category string) (*item.Tree, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return a.Current(), nil
	}

	gen, loadCtx, cancel := a.begin(ctx)
	defer cancel()
	log := a.opts.Logger.WithFields(logrus.Fields{"category": category, "generation": gen})

	items, err := a.api.ListItems(loadCtx, category)
	switch {
	case err == nil:
	case errors.Is(err, serviceapi.ErrRejected), errors.Is(err, serviceapi.ErrInvalidPayload):
		log.WithError(err).Info("category has no items")
		items = nil
	default:
		if a.superseded(gen) {
			return nil, ErrSuperseded
		}
		log.WithError(err).Error("failed to load items")
		return nil, err
	}

	tree := &item.Tree{Category: category, Generation: gen, Items: make([]*item.Item, 0, len(items))}
	for _, it := range items {
		if it != nil {
			tree.Items = append(tree.Items, it)
		}
	}

	var g errgroup.Group
	g.SetLimit(a.opts.MaxConcurrency)
	for _, it := range tree.Items {
		g.Go(func() error {
			a.loadItem(loadCtx, gen, it, log)
			return nil
		})
	}
	_ = g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		log.Debug("discarding superseded tree")
		return nil, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.current = tree
	return tree, nil
}

func (a *Aggregator) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	loadCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	a.cancel = cancel
	return a.generation, loadCtx, cancel
}

func (a *Aggregator) superseded(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen != a.generation
}

// loadItem owns it exclusively for the duration of the call.
func (a *Aggregator) loadItem(ctx context.Context, gen uint64, it *item.Item, log *logrus.Entry) {
	itemID := it.ItemID.String()
	log = log.WithField("item_id", itemID)

	it.LoadingAdditionalInfo = true
	a.opts.Bus.Publish(&ItemLoadStarted{Generation: gen, ItemID: itemID})

	infos, err := a.api.ListAdditionalInfo(ctx, itemID)
	switch {
	case err == nil:
	case errors.Is(err, serviceapi.ErrRejected):
		infos = nil
	default:
		log.WithError(err).Warn("failed to load additional info")
		infos = nil
		it.AdditionalInfoError = additionalInfoErrorPrefix + err.Error()
	}

	for _, info := range infos {
		if info == nil {
			continue
		}
		info.LoadingLogistic = true
		entries, err := a.api.ListLogistic(ctx, info.PurchasingID.String(), itemID)
		if err != nil {
			log.WithError(err).WithField("purchasing_id", info.PurchasingID.String()).Debug("no logistic info")
			info.LogisticInfo = nil
			info.Hidden = false
		} else {
			info.LogisticInfo = entries
			info.Hidden = item.IsFullyReconciled(info.PurchaseUnit, entries)
		}
		info.LoadingLogistic = false
	}

	it.AdditionalInfo = item.Visible(infos)
	it.LoadingAdditionalInfo = false
	a.opts.Bus.Publish(&ItemLoadFinished{
		Generation: gen,
		ItemID:     itemID,
		Batches:    len(it.AdditionalInfo),
		Err:        it.AdditionalInfoError,
	})
}
