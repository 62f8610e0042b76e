package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
	"github.com/mdotservice/serviceinfo/pkg/formapi"
)

var errTransport = &formapi.TransportError{Op: "test", StatusCode: 502, Err: fmt.Errorf("bad gateway")}

func rejected(op string) error {
	return fmt.Errorf("%s: %w", op, serviceapi.ErrRejected)
}

// fakeAPI is an in-memory endpoint. Every call is appended to calls in the
// order it was made.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	items        func(ctx context.Context, category string) ([]*item.Item, error)
	additional   map[string][]*item.AdditionalInfo
	additionalEr map[string]error
	logistic     map[string][]*item.LogisticEntry // keyed by purchasing id
	logisticErr  map[string]error

	ids       map[string]string
	updateErr map[string]error
	updated   map[string][3]string

	dates         item.DateRange
	updateDateErr error

	categories    []item.Category
	categoriesErr error
	fields        []string
	history       string
	historyErr    error
	moved         []string
	reset         int
	delisted      []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		additional:   map[string][]*item.AdditionalInfo{},
		additionalEr: map[string]error{},
		logistic:     map[string][]*item.LogisticEntry{},
		logisticErr:  map[string]error{},
		ids:          map[string]string{},
		updateErr:    map[string]error{},
		updated:      map[string][3]string{},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListItems(ctx context.Context, category string) ([]*item.Item, error) {
	f.record("item_code:" + category)
	if f.items == nil {
		return nil, rejected("item_code")
	}
	return f.items(ctx, category)
}

func (f *fakeAPI) ListAdditionalInfo(_ context.Context, itemID string) ([]*item.AdditionalInfo, error) {
	f.record("list:" + itemID)
	if err := f.additionalEr[itemID]; err != nil {
		return nil, err
	}
	infos, ok := f.additional[itemID]
	if !ok {
		return nil, rejected("list")
	}
	return infos, nil
}

func (f *fakeAPI) ListLogistic(_ context.Context, purchasingID, itemID string) ([]*item.LogisticEntry, error) {
	f.record("logistic_list:" + purchasingID + ":" + itemID)
	if err := f.logisticErr[purchasingID]; err != nil {
		return nil, err
	}
	entries, ok := f.logistic[purchasingID]
	if !ok {
		return nil, rejected("logistic_list")
	}
	return entries, nil
}

func (f *fakeAPI) ResolveItemID(_ context.Context, name string) (string, error) {
	f.record("get_item_id:" + name)
	id, ok := f.ids[name]
	if !ok {
		return "", rejected("get_item_id")
	}
	return id, nil
}

func (f *fakeAPI) UpdateItemDetail(_ context.Context, itemID, iq, sq, balance string) error {
	f.record("update_item_detail:" + itemID)
	if err := f.updateErr[itemID]; err != nil {
		return err
	}
	f.mu.Lock()
	f.updated[itemID] = [3]string{iq, sq, balance}
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) GetMainDate(context.Context) (item.DateRange, error) {
	f.record("get_main_date")
	return f.dates, nil
}

func (f *fakeAPI) UpdateMainDate(_ context.Context, from, to string) error {
	f.record("update_main_date:" + from + "-" + to)
	if f.updateDateErr != nil {
		return f.updateDateErr
	}
	f.dates = item.DateRange{FromDate: item.Text(from), ToDate: item.Text(to)}
	return nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]item.Category, error) {
	f.record("category")
	return f.categories, f.categoriesErr
}

func (f *fakeAPI) UpdateField(_ context.Context, field serviceapi.Field, itemID, value string) error {
	f.record("update_" + string(field) + ":" + itemID)
	f.fields = append(f.fields, fmt.Sprintf("%s=%s", field, value))
	return nil
}

func (f *fakeAPI) MoveRemarkToHistory(_ context.Context, itemID, remark string) error {
	f.record("update_old_remark:" + itemID)
	f.moved = append(f.moved, remark)
	return nil
}

func (f *fakeAPI) RemarkHistory(_ context.Context, itemID string) (string, error) {
	f.record("get_old_remark:" + itemID)
	return f.history, f.historyErr
}

func (f *fakeAPI) ResetAllItems(context.Context) error {
	f.record("reset_all_item")
	f.reset++
	return nil
}

func (f *fakeAPI) DelistItem(_ context.Context, itemID string) error {
	f.record("delist_item:" + itemID)
	f.delisted = append(f.delisted, itemID)
	return nil
}

func staticItems(items ...*item.Item) func(context.Context, string) ([]*item.Item, error) {
	return func(context.Context, string) ([]*item.Item, error) { return items, nil }
}
