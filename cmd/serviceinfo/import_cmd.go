package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdotservice/serviceinfo/modules/inventory/domain/importsheet"
	"github.com/mdotservice/serviceinfo/modules/inventory/infrastructure/spreadsheet"
	"github.com/mdotservice/serviceinfo/modules/inventory/services"
)

func newImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Push iq, sq and balance from a spreadsheet to every named item",
		Long: "Reads the first sheet of an .xlsx workbook (or a .csv export). Each item\n" +
			"takes two rows: the name in column A, then iq, sq and balance in columns\n" +
			"B..D of the next row. E2 and G2 may carry the reporting period.\n" +
			"Outcomes are printed as JSON lines while the import runs, then the report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Spreadsheet to import, .xlsx or .csv (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, a *app, file string) error {
	table, err := spreadsheet.ReadFile(file)
	if err != nil {
		return withCode(exitUsage, err)
	}

	out := cmd.OutOrStdout()
	var writeErr error
	a.bus.Subscribe(func(e *services.OutcomeRecorded) {
		if writeErr == nil {
			writeErr = writeJSONLine(out, e.Outcome)
		}
	})

	report := services.NewReconciler(a.api, services.ReconcilerOptions{Bus: a.bus, Logger: a.log}).Run(cmd.Context(), table)
	if writeErr != nil {
		return writeErr
	}
	if err := writeJSONLine(out, map[string]any{"report": report}); err != nil {
		return err
	}
	return importResult(report)
}

func importResult(report *importsheet.Report) error {
	switch {
	case !report.Completed:
		return withCode(exitRemote, fmt.Errorf("import interrupted: %s", report.Err))
	case report.Processed() > 0 && report.SuccessfulCount == 0:
		return withCode(exitNoneImported, errors.New("no row was imported"))
	}
	return nil
}
