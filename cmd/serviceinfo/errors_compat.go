package main

import (
	"errors"

	"github.com/mdotservice/serviceinfo/modules/inventory/services"
)

// keep error handling in one place (avoids importing errors in every file).
func as(err error, target any) bool { return errors.As(err, target) }

// serviceErr tags an error from the services layer with its exit code.
func serviceErr(err error) error {
	if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrEmptyRemark) {
		return withCode(exitValidation, err)
	}
	return withCode(exitRemote, err)
}
