package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/importsheet"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/serviceapi"
	"github.com/mdotservice/serviceinfo/pkg/eventbus"
	"github.com/mdotservice/serviceinfo/pkg/logging"
)

type ReconcilerOptions struct {
	Bus    eventbus.EventBus
	Logger *logrus.Entry
}

// Reconciler pushes the quantities of an import table to the endpoint one
// pair at a time.
type Reconciler struct {
	api  ImportTarget
	opts ReconcilerOptions
}

func NewReconciler(api ImportTarget, opts ReconcilerOptions) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New(opts.Logger)
	}
	return &Reconciler{api: api, opts: opts}
}

// Run processes table and returns a fresh report. The date range, when the
// table carries one, is pushed before the first row. Rows are strictly
// sequential and one row's failure never stops the next. Each outcome is
// published as an OutcomeRecorded event as soon as it is known.
func (r *Reconciler) Run(ctx context.Context, table importsheet.Table) *importsheet.Report {
	report := importsheet.NewReport()

	if from, to, ok := table.DateRange(); ok {
		r.pushDateRange(ctx, report, from, to)
	}

	for _, pair := range importsheet.Pairs(table) {
		if err := ctx.Err(); err != nil {
			report.Err = err.Error()
			r.opts.Logger.WithError(err).Warn("import cancelled")
			return report
		}
		outcome := r.reconcile(ctx, pair)
		report.Record(outcome)
		r.opts.Bus.Publish(&OutcomeRecorded{Outcome: outcome})
	}

	report.Completed = true
	r.opts.Logger.WithFields(logrus.Fields{
		"processed":  report.Processed(),
		"successful": report.SuccessfulCount,
	}).Info("import completed")
	r.opts.Bus.Publish(&ImportCompleted{Report: report})
	return report
}

func (r *Reconciler) pushDateRange(ctx context.Context, report *importsheet.Report, from, to string) {
	log := r.opts.Logger.WithFields(logrus.Fields{"from_date": from, "to_date": to})
	if err := r.api.UpdateMainDate(ctx, from, to); err != nil {
		log.WithError(err).Error("failed to update main date")
		report.DateRangeError = err.Error()
		return
	}
	current, err := r.api.GetMainDate(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to re-read main date")
		report.DateRangeError = err.Error()
		return
	}
	report.DateRange = &current
}

func (r *Reconciler) reconcile(ctx context.Context, pair importsheet.Pair) (outcome importsheet.Outcome) {
	values := pair.Values()
	outcome = importsheet.Outcome{
		Row:     pair.Index,
		Name:    pair.Name,
		IQ:      values.IQ,
		SQ:      values.SQ,
		Balance: values.Balance,
	}
	log := r.opts.Logger.WithFields(logrus.Fields{"row": pair.Index, "name": pair.Name})
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("row panicked: %v", rec)
			outcome.Status = importsheet.StatusFailed
			outcome.Error = fmt.Sprint(rec)
		}
	}()

	itemID, err := r.api.ResolveItemID(ctx, pair.Name)
	if err != nil {
		log.WithError(err).Warn("item not found")
		outcome.Status = importsheet.StatusUnresolved
		outcome.Error = err.Error()
		return outcome
	}
	outcome.ItemID = itemID

	err = r.api.UpdateItemDetail(ctx, itemID, values.IQ, values.SQ, values.Balance)
	switch {
	case err == nil:
		outcome.Status = importsheet.StatusUpdated
	case errors.Is(err, serviceapi.ErrRejected):
		log.WithError(err).Warn("update rejected")
		outcome.Status = importsheet.StatusRejected
		outcome.Error = err.Error()
	default:
		log.WithError(err).Error("update failed")
		outcome.Status = importsheet.StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}
