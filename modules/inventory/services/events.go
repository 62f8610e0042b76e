package services

import (
	"github.com/mdotservice/serviceinfo/modules/inventory/domain/importsheet"
)

type ItemLoadStarted struct {
	Generation uint64
	ItemID     string
}

type ItemLoadFinished struct {
	Generation uint64
	ItemID     string
	// Batches is the number of visible batches left after hidden ones were dropped.
	Batches int
	Err     string
}

type OutcomeRecorded struct {
	Outcome importsheet.Outcome
}

type ImportCompleted struct {
	Report *importsheet.Report
}
