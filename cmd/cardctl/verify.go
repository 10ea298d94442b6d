package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

type verifyOptions struct {
	number string
	expiry string
	cvv    string
	dryRun bool
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify card fields and log the attempt",
		Example: `  cardctl verify --number "4532 0151 1283 0366" --expiry 12/30 --cvv 123
  cardctl verify --number 4532015112830366 --expiry 12/30 --cvv 123 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.number, "number", "", "Card number; spaces and hyphens are ignored")
	cmd.Flags().StringVar(&opts.expiry, "expiry", "", "Expiry date as MM/YY")
	cmd.Flags().StringVar(&opts.cvv, "cvv", "", "Card verification value")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Check the fields without touching the verification log")

	return cmd
}

func runVerify(cmd *cobra.Command, root *rootOptions, opts *verifyOptions) error {
	format, err := parseOutputFormat(root.outputFmt)
	if err != nil {
		return err
	}

	var verifier *services.VerificationService
	if opts.dryRun {
		cfg, err := root.loadConfig()
		if err != nil {
			return err
		}
		verifier = services.NewVerificationService(services.NewMemoryRecordStore(), root.logger(cmd), cfg.VerificationSettings())
	} else {
		rt, err := root.open(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()
		verifier = rt.verifier
	}

	outcome, err := verifier.Process(commandContext(cmd), opts.number, opts.expiry, opts.cvv)
	if err != nil && !utils.IsStorageError(err) && !utils.IsIncompleteSubmission(err) {
		return err
	}
	if opts.dryRun {
		outcome.RecordID = 0
	}

	out := cmd.OutOrStdout()
	if format != outputTable {
		if perr := printOutput(out, format, outcome, nil, nil); perr != nil {
			return perr
		}
		return err
	}

	if utils.IsIncompleteSubmission(err) {
		fmt.Fprintf(out, "%s (missing: %s)\n", services.MsgIncomplete, strings.Join(outcome.MissingFields, ", "))
		return err
	}

	fmt.Fprintln(out, outcome.Summary())
	for _, msg := range outcome.Errors {
		fmt.Fprintf(out, "  - %s\n", msg)
	}

	headers := []string{"Field", "Valid"}
	rows := [][]string{
		{"card_number", fmt.Sprint(outcome.CardNumberValid)},
		{"expiry", fmt.Sprint(outcome.ExpiryValid)},
		{"cvv", fmt.Sprint(outcome.CVVValid)},
	}
	if perr := printTable(out, headers, rows); perr != nil {
		return perr
	}

	if err != nil {
		return fmt.Errorf("result could not be recorded: %w", err)
	}

	if opts.dryRun {
		fmt.Fprintln(out, "Dry run: nothing was logged")
		return nil
	}
	fmt.Fprintf(out, "Logged as record #%d\n", outcome.RecordID)
	return nil
}
