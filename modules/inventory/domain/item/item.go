// Package item holds the catalog hierarchy served by the service info
// endpoint: items, their purchasing batches (additional info) and the
// logistic entries recorded against each batch.
package item

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a JSON scalar read as a string. The endpoint is loose about types
// (ids and quantities arrive as either numbers or strings), so numbers and
// booleans are kept in their literal form and null becomes "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

func (t Text) Blank() bool { return strings.TrimSpace(string(t)) == "" }

type Category struct {
	Name Text `json:"name"`
}

// Item is one catalog row. Attributes keeps every scalar the endpoint sent,
// including columns this type does not name.
type Item struct {
	ItemID       Text `json:"item_id"`
	Name         Text `json:"name"`
	Balance      Text `json:"balance"`
	SO           Text `json:"so"`
	IQ           Text `json:"iq"`
	SQ           Text `json:"sq"`
	ExtraRemark  Text `json:"extra_remark"`
	ItemRemark   Text `json:"item_remark"`
	PurchasingID Text `json:"purchasingid"`
	PurchaseUnit Text `json:"purchase_unit"`

	Attributes map[string]Text `json:"attributes,omitempty"`

	LoadingAdditionalInfo bool              `json:"loadingAdditionalInfo"`
	AdditionalInfo        []*AdditionalInfo `json:"additionalInfo"`
	AdditionalInfoError   string            `json:"additionalInfoError,omitempty"`
}

func (it *Item) UnmarshalJSON(b []byte) error {
	type plainItem Item
	var p plainItem
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Attributes = scalars(raw)
	*it = Item(p)
	return nil
}

// scalars converts the scalar members of raw to Text. Objects and arrays
// are skipped.
func scalars(raw map[string]json.RawMessage) map[string]Text {
	out := make(map[string]Text, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && (v[0] == '{' || v[0] == '[') {
			continue
		}
		var t Text
		if err := t.UnmarshalJSON(v); err != nil {
			continue
		}
		out[k] = t
	}
	return out
}

// AdditionalInfo is one purchasing batch of an item. Attributes keeps every
// scalar the endpoint sent so callers can show fields this type does not name.
type AdditionalInfo struct {
	PurchasingID Text            `json:"purchasingid"`
	PurchaseUnit Text            `json:"purchase_unit"`
	Attributes   map[string]Text `json:"attributes,omitempty"`

	LoadingLogistic bool             `json:"loadingLogistic"`
	LogisticInfo    []*LogisticEntry `json:"logisticInfo"`
	Hidden          bool             `json:"hidden"`
}

func (a *AdditionalInfo) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	attrs := scalars(raw)
	*a = AdditionalInfo{
		PurchasingID: attrs["purchasingid"],
		PurchaseUnit: attrs["purchase_unit"],
		Attributes:   attrs,
	}
	return nil
}

type LogisticEntry struct {
	CompletedDate Text `json:"completed_date"`
	Unit          Text `json:"unit"`
}

// Tree is the assembled result of one category load.
type Tree struct {
	Category   string  `json:"category"`
	Generation uint64  `json:"generation"`
	Items      []*Item `json:"items"`
}

// Filter returns the items whose name or item_id contains query, ignoring
// case. An empty query returns items unchanged.
func Filter(items []*Item, query string) []*Item {
	if query == "" || items == nil {
		return items
	}
	q := strings.ToLower(query)
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name.String()), q) ||
			strings.Contains(strings.ToLower(it.ItemID.String()), q) {
			out = append(out, it)
		}
	}
	return out
}

// DateRange is the reporting period the endpoint keeps for all items.
type DateRange struct {
	FromDate  Text `json:"from_date"`
	ToDate    Text `json:"to_date"`
	UpdatedAt Text `json:"updated_at"`
}
