package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"voucher-reconciliation-service/cmd/bilagrecon/config"
	"voucher-reconciliation-service/internal/excel"
	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/internal/reconciler"
	"voucher-reconciliation-service/internal/reporter"
	"voucher-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	inputFile       string
	exportDir       string
	iart            string
	outputFile      string
	outputFormat    string
	includePostings bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a voucher list against ledger exports",
	Long: `Reconcile reads a voucher workbook, locates each voucher's postings in the
corresponding ledger export and verifies the posting totals.

This command requires:
- A voucher workbook (XLSX) with columns SUM, TEKST, AI, <blank>, Bilagsart, Bilagsnummer, FP, Dato
- A directory with one "<bilagsnummer>.txt" export file per voucher

A result workbook is written only when every voucher reconciles; any mismatch
or missing posting block aborts the run without producing output.

Examples:
  # Basic run with net postings
  bilagrecon reconcile --input-file bilag.xlsx --export-dir ./exports

  # Gross postings with an explicit result file
  bilagrecon reconcile --input-file bilag.xlsx --export-dir ./exports \
    --iart BRUT --output-file result.xlsx

  # JSON summary including every extracted posting
  bilagrecon reconcile --input-file bilag.xlsx --export-dir ./exports \
    --output-format json --include-postings`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&inputFile, "input-file", "i", "", "path to voucher workbook (required)")
	reconcileCmd.Flags().StringVarP(&exportDir, "export-dir", "e", "", "directory holding per-voucher ledger exports (required)")

	// Matching flags
	reconcileCmd.Flags().StringVar(&iart, "iart", models.CodeNet.String(), "transaction-type code selecting relevant posting rows")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "Bilagsafstemning.xlsx", "result workbook path")
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "summary format: console, json")
	reconcileCmd.Flags().BoolVar(&includePostings, "include-postings", false, "list every extracted posting in the summary")

	reconcileCmd.MarkFlagRequired("input-file")
	reconcileCmd.MarkFlagRequired("export-dir")

	// Bind flags to viper
	viper.BindPFlag("input-file", reconcileCmd.Flags().Lookup("input-file"))
	viper.BindPFlag("export-dir", reconcileCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("iart", reconcileCmd.Flags().Lookup("iart"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("include-postings", reconcileCmd.Flags().Lookup("include-postings"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input-file")
	exportDir = viper.GetString("export-dir")
	iart = viper.GetString("iart")
	outputFile = viper.GetString("output-file")
	outputFormat = viper.GetString("output-format")
	includePostings = viper.GetBool("include-postings")

	if inputFile == "" {
		return fmt.Errorf("input-file is required")
	}
	if exportDir == "" {
		return fmt.Errorf("export-dir is required")
	}

	if err := validateFileExists(inputFile, "voucher workbook"); err != nil {
		return err
	}

	info, err := os.Stat(exportDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("export directory does not exist: %s", exportDir)
	}
	if err != nil {
		return fmt.Errorf("error accessing export directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("export-dir is not a directory: %s", exportDir)
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json", outputFormat)
	}

	if iart == "" {
		return fmt.Errorf("iart cannot be empty")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logger.NewLogger(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logger.SetGlobalLogger(log)

	// Read the voucher workbook
	workbook, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open voucher workbook: %w", err)
	}
	bilagList, err := excel.ReadBilagList(workbook)
	workbook.Close()
	if err != nil {
		return err
	}

	if len(bilagList) == 0 {
		fmt.Fprintf(os.Stderr, "No vouchers to reconcile.\n")
		return nil
	}

	first, last, err := models.BatchDateRange(bilagList)
	if err != nil {
		return err
	}
	log.WithFields(logger.Fields{
		"vouchers":  len(bilagList),
		"date_from": first.Format("2006-01-02"),
		"date_to":   last.Format("2006-01-02"),
	}).Info("Voucher workbook loaded")

	// Build the reconciliation service over the export directory
	provider, err := reconciler.NewDirectoryProvider(exportDir)
	if err != nil {
		return err
	}

	service, err := reconciler.NewService(provider, config.CreateExportLayout(), models.TransactionCode(iart))
	if err != nil {
		return err
	}

	batch, err := service.ReconcileBatch(ctx, bilagList)
	if err != nil {
		return err
	}

	// Write the result workbook
	if outputFile != "" {
		output, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		if err := excel.WriteResults(batch, output); err != nil {
			output.Close()
			return err
		}
		if err := output.Close(); err != nil {
			return fmt.Errorf("failed to finalize output file: %w", err)
		}
	}

	// Print the summary
	generator, err := reporter.NewGenerator(config.CreateReportConfig(outputFormat, includePostings))
	if err != nil {
		return err
	}
	if err := generator.Generate(batch, os.Stdout); err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Reconciled %d vouchers with %d postings in %v.\n",
			len(batch.Results), batch.Postings, batch.Duration)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Result workbook written to %s\n", outputFile)
		}
	}

	return nil
}
