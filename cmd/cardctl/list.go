package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksred/card-check/internal/models"
	"github.com/ksred/card-check/internal/validation"
)

type listOptions struct {
	redact bool
}

// listedRecord is one row of `cardctl list` in json and yaml output
type listedRecord struct {
	ID         uint   `json:"id" yaml:"id"`
	CardNumber string `json:"card_number" yaml:"card_number"`
	Expiry     string `json:"expiry" yaml:"expiry"`
	CVV        string `json:"cvv" yaml:"cvv"`
	VerifiedAt string `json:"verified_at" yaml:"verified_at"`
	Status     string `json:"status" yaml:"status"`
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every logged verification, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.redact, "redact", false, "Mask card numbers and hide CVVs")

	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions) error {
	format, err := parseOutputFormat(root.outputFmt)
	if err != nil {
		return err
	}

	rt, err := root.open(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	records, err := rt.store.ListAll(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to read verification records: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 && format == outputTable {
		fmt.Fprintln(out, "No verification records found.")
		return nil
	}

	listed := make([]listedRecord, 0, len(records))
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		lr := toListedRecord(r, opts.redact)
		listed = append(listed, lr)
		rows = append(rows, []string{fmt.Sprint(lr.ID), lr.CardNumber, lr.Expiry, lr.CVV, lr.VerifiedAt, lr.Status})
	}

	headers := []string{"ID", "Card Number", "Expiry", "CVV", "Verified At", "Status"}
	return printOutput(out, format, listed, headers, rows)
}

func toListedRecord(r models.VerificationRecord, redact bool) listedRecord {
	lr := listedRecord{
		ID:         r.ID,
		CardNumber: r.CardNumber,
		Expiry:     r.Expiry,
		CVV:        r.CVV,
		VerifiedAt: r.VerifiedAtDisplay(),
		Status:     r.StatusString(),
	}
	if lr.Status == "" {
		lr.Status = "-"
	}
	if redact {
		lr.CardNumber = validation.MaskCardNumber(validation.NormalizeCardNumber(r.CardNumber))
		lr.CVV = "***"
	}
	return lr
}
