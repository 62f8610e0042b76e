package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/item"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
	"github.com/mdotservice/serviceinfo/pkg/logging"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrEmptyRemark = errors.New("remark is empty")
)

// CatalogService covers the single-item edits and lookups around the
// aggregated tree.
type CatalogService struct {
	api CatalogAPI
	log *logrus.Entry
}

func NewCatalogService(api CatalogAPI, log *logrus.Entry) *CatalogService {
	if log == nil {
		log = logging.Nop()
	}
	return &CatalogService{api: api, log: log}
}

// Categories refreshes the main dates and then lists the category names.
// A main date failure is logged and does not fail the listing.
func (s *CatalogService) Categories(ctx context.Context) ([]item.Category, item.DateRange, error) {
	dates, err := s.api.GetMainDate(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to load main date")
	}
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		if errors.Is(err, serviceapi.ErrRejected) {
			return nil, dates, fmt.Errorf("%w: %v", serviceapi.ErrInvalidPayload, err)
		}
		return nil, dates, err
	}
	return categories, dates, nil
}

func (s *CatalogService) MainDates(ctx context.Context) (item.DateRange, error) {
	return s.api.GetMainDate(ctx)
}

// SetMainDates updates the reporting period and returns it as stored.
func (s *CatalogService) SetMainDates(ctx context.Context, from, to string) (item.DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return item.DateRange{}, fmt.Errorf("%w: from and to dates are required", ErrValidation)
	}
	if err := s.api.UpdateMainDate(ctx, from, to); err != nil {
		return item.DateRange{}, err
	}
	return s.api.GetMainDate(ctx)
}

func (s *CatalogService) UpdateField(ctx context.Context, dto UpdateFieldDTO) error {
	if errs, ok := dto.Ok(); !ok {
		keys := make([]string, 0, len(errs))
		for k, v := range errs {
			keys = append(keys, k+":"+v)
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(keys, ", "))
	}
	if err := s.api.UpdateField(ctx, dto.field(), dto.ItemID, dto.Value); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"item_id": dto.ItemID, "field": dto.Field}).Error("update failed")
		return err
	}
	return nil
}

// MoveToHistory appends remark to the item's remark history and clears the
// extra remark.
func (s *CatalogService) MoveToHistory(ctx context.Context, itemID, remark string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: item id is required", ErrValidation)
	}
	if strings.TrimSpace(remark) == "" {
		return ErrEmptyRemark
	}
	if err := s.api.MoveRemarkToHistory(ctx, itemID, remark); err != nil {
		return err
	}
	return s.UpdateField(ctx, UpdateFieldDTO{ItemID: itemID, Field: string(serviceapi.FieldExtraRemark)})
}

// History returns the item's past remarks, oldest first. An item without
// history yields an empty list.
func (s *CatalogService) History(ctx context.Context, itemID string) ([]string, error) {
	raw, err := s.api.RemarkHistory(ctx, itemID)
	if err != nil {
		if errors.Is(err, serviceapi.ErrRejected) {
			return []string{}, nil
		}
		return nil, err
	}
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func (s *CatalogService) ResetAll(ctx context.Context) error {
	return s.api.ResetAllItems(ctx)
}

func (s *CatalogService) Delist(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: item id is required", ErrValidation)
	}
	return s.api.DelistItem(ctx, itemID)
}
