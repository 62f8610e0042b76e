package services

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type UpdateFieldDTO struct {
	ItemID string `json:"item_id" validate:"required"`
	Field  string `json:"field" validate:"required,oneof=balance so iq sq extra_remark item_remark"`
	Value  string `json:"value"`
}

func (d *UpdateFieldDTO) Normalize() {
	d.ItemID = strings.TrimSpace(d.ItemID)
	d.Field = strings.ToLower(strings.TrimSpace(d.Field))
}

// Ok normalizes d and returns the failed constraints keyed by field name.
func (d *UpdateFieldDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	errs := validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if ve, ok := errs.(validator.ValidationErrors); ok {
		verrs = ve
	}
	for _, err := range verrs {
		out[err.Field()] = err.Tag()
	}
	return out, false
}

func (d *UpdateFieldDTO) field() serviceapi.Field {
	return serviceapi.Field(d.Field)
}
