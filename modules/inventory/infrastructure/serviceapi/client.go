package serviceapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/pkg/formapi"
)

var (
	// ErrRejected means the endpoint answered but with a status other than "1".
	ErrRejected = errors.New("service info: request rejected")
	// ErrInvalidPayload means the status was "1" but the expected field was
	// missing or malformed.
	ErrInvalidPayload = errors.New("service info: invalid data format")
)

// Field is an item column that can be edited one at a time.
type Field string

const (
	FieldBalance     Field = "balance"
	FieldSO          Field = "so"
	FieldIQ          Field = "iq"
	FieldSQ          Field = "sq"
	FieldExtraRemark Field = "extra_remark"
	FieldItemRemark  Field = "item_remark"
)

type Client struct {
	sender formapi.Sender
}

func New(sender formapi.Sender) *Client {
	return &Client{sender: sender}
}

// call sends req and converts a logical failure into ErrRejected.
func (c *Client) call(ctx context.Context, req formapi.Request) (*formapi.Response, error) {
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, req.Op)
	}
	if !resp.OK() {
		return resp, fmt.Errorf("%s: %w (status=%q)", req.Op, ErrRejected, resp.Status)
	}
	return resp, nil
}

func list[T any](ctx context.Context, c *Client, req formapi.Request, key string) ([]T, error) {
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Truthy(key) {
		return nil, fmt.Errorf("%s: %w (no %s)", req.Op, ErrRejected, key)
	}
	out, err := formapi.DecodeList[T](resp, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", req.Op, ErrInvalidPayload, err)
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]item.Category, error) {
	resp, err := c.call(ctx, formapi.Request{Op: "category"})
	if err != nil {
		return nil, err
	}
	var categories []item.Category
	if err := resp.Decode("category", &categories); err != nil {
		return nil, fmt.Errorf("category: %w: %v", ErrInvalidPayload, err)
	}
	return categories, nil
}

func (c *Client) ListItems(ctx context.Context, category string) ([]*item.Item, error) {
	return list[*item.Item](ctx, c, formapi.Request{Op: "item_code", Value: category}, "item")
}

func (c *Client) ListAdditionalInfo(ctx context.Context, itemID string) ([]*item.AdditionalInfo, error) {
	return list[*item.AdditionalInfo](ctx, c, formapi.Request{Op: "list", Value: itemID}, "item")
}

func (c *Client) ListLogistic(ctx context.Context, purchasingID, itemID string) ([]*item.LogisticEntry, error) {
	return list[*item.LogisticEntry](ctx, c, formapi.Request{
		Op:    "logistic_list",
		Value: "0",
		Params: url.Values{
			"purchasingid": {purchasingID},
			"itemid":       {itemID},
		},
	}, "item")
}

// ResolveItemID looks an item up by its exact name.
func (c *Client) ResolveItemID(ctx context.Context, name string) (string, error) {
	resp, err := c.call(ctx, formapi.Request{Op: "get_item_id", Params: url.Values{"name": {name}}})
	if err != nil {
		return "", err
	}
	var id item.Text
	if resp.Has("item_id") {
		if err := resp.Decode("item_id", &id); err != nil {
			return "", fmt.Errorf("get_item_id: %w: %v", ErrInvalidPayload, err)
		}
	}
	if id.Blank() {
		return "", fmt.Errorf("get_item_id: %w (no item_id for %q)", ErrRejected, name)
	}
	return strings.TrimSpace(id.String()), nil
}

func (c *Client) UpdateItemDetail(ctx context.Context, itemID, iq, sq, balance string) error {
	_, err := c.call(ctx, formapi.Request{
		Op: "update_item_detail",
		Params: url.Values{
			"balance": {balance},
			"iq":      {iq},
			"sq":      {sq},
			"item_id": {itemID},
		},
	})
	return err
}

func (c *Client) GetMainDate(ctx context.Context) (item.DateRange, error) {
	resp, err := c.call(ctx, formapi.Request{Op: "get_main_date"})
	if err != nil {
		return item.DateRange{}, err
	}
	var data []item.DateRange
	if err := resp.Decode("data", &data); err != nil || len(data) == 0 {
		return item.DateRange{}, fmt.Errorf("get_main_date: %w", ErrInvalidPayload)
	}
	return data[0], nil
}

func (c *Client) UpdateMainDate(ctx context.Context, from, to string) error {
	_, err := c.call(ctx, formapi.Request{
		Op:     "update_main_date",
		Params: url.Values{"from_date": {from}, "to_date": {to}},
	})
	return err
}

func (c *Client) UpdateField(ctx context.Context, field Field, itemID, value string) error {
	_, err := c.call(ctx, formapi.Request{
		Op:     "update_" + string(field),
		Params: url.Values{"value": {value}, "item_id": {itemID}},
	})
	return err
}

func (c *Client) MoveRemarkToHistory(ctx context.Context, itemID, remark string) error {
	_, err := c.call(ctx, formapi.Request{
		Op:     "update_old_remark",
		Params: url.Values{"value": {remark}, "item_id": {itemID}},
	})
	return err
}

// RemarkHistory returns the raw newline separated history text.
func (c *Client) RemarkHistory(ctx context.Context, itemID string) (string, error) {
	resp, err := c.call(ctx, formapi.Request{Op: "get_old_remark", Params: url.Values{"item_id": {itemID}}})
	if err != nil {
		return "", err
	}
	var history item.Text
	if resp.Has("old_remark") {
		if err := resp.Decode("old_remark", &history); err != nil {
			return "", fmt.Errorf("get_old_remark: %w: %v", ErrInvalidPayload, err)
		}
	}
	return history.String(), nil
}

func (c *Client) ResetAllItems(ctx context.Context) error {
	_, err := c.call(ctx, formapi.Request{Op: "reset_all_item"})
	return err
}

func (c *Client) DelistItem(ctx context.Context, itemID string) error {
	_, err := c.call(ctx, formapi.Request{Op: "delist_item", Params: url.Values{"item_id": {itemID}}})
	return err
}
