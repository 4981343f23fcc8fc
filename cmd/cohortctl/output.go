package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dtroode/cohort-migrator/internal/model"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderReport(report model.Report) string {
	var b strings.Builder

	summary := [][]string{
		{"Mode", string(report.Mode)},
		{"Cohort", report.Cohort},
		{"Records", strconv.Itoa(report.TotalRecords)},
		{"Successful", strconv.Itoa(report.Successful)},
		{"Errored", strconv.Itoa(report.Errored)},
		{"Duplicates removed", strconv.Itoa(report.DuplicatesRemoved)},
		{"Audit entry", auditRef(report.AuditID)},
	}
	b.WriteString(renderTable([]string{"Run", ""}, summary, nil))
	b.WriteString("\n")

	counts := report.CountByMatch()
	byMatch := make([][]string, 0, len(model.MatchTypes))
	for _, mt := range model.MatchTypes {
		byMatch = append(byMatch, []string{mt.String(), strconv.Itoa(counts[mt])})
	}
	b.WriteString(renderTable([]string{"Match", "Records"}, byMatch, []columnAlignment{alignLeft, alignRight}))

	if len(report.Results) > 0 {
		rows := make([][]string, 0, len(report.Results))
		for _, res := range report.Results {
			rows = append(rows, []string{
				strconv.Itoa(res.Record.Line),
				res.Record.Email,
				res.MatchType.String(),
				res.Action.String(),
				strconv.Itoa(res.Candidates),
				outcome(res, report.Mode),
			})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"Line", "Email", "Match", "Action", "Candidates", "Outcome"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	if len(report.RowErrors) > 0 {
		rows := make([][]string, 0, len(report.RowErrors))
		for _, re := range report.RowErrors {
			rows = append(rows, []string{strconv.Itoa(re.Line), re.Reason})
		}
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Line", "Skipped row"}, rows, []columnAlignment{alignRight}))
	}

	return b.String()
}

func outcome(res model.MatchResult, mode model.RunMode) string {
	switch {
	case res.Failed:
		return "failed: " + strings.Join(res.Errors, "; ")
	case res.Applied:
		return "applied " + res.IdentityID.String()
	case !mode.Mutating():
		return "classified"
	default:
		return "untouched"
	}
}

func renderRollback(report model.RollbackReport) string {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		state := "restored"
		if !res.Restored {
			state = "failed: " + res.Error
		}
		snapshot := "-"
		if !res.SnapshotCreatedAt.IsZero() {
			snapshot = res.SnapshotCreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{res.IdentityID.String(), snapshot, state})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Identity", "Snapshot", "Outcome"}, rows, nil))
	fmt.Fprintf(&b, "\nCohort %s: %d restored, %d failed, audit entry %s",
		report.Cohort, report.Successful, report.Errored, auditRef(report.AuditID))
	return b.String()
}

func renderViolations(violations []model.SecurityViolation) string {
	if len(violations) == 0 {
		return "No security violations recorded"
	}
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		prevented := "no"
		if v.Prevented {
			prevented = "yes"
		}
		rows = append(rows, []string{
			v.Timestamp.UTC().Format(time.RFC3339),
			v.Operation,
			string(v.Kind),
			v.Actor,
			prevented,
			v.Detail,
		})
	}
	return renderTable([]string{"When", "Operation", "Kind", "Actor", "Prevented", "Detail"}, rows, nil)
}

func auditRef(id uuid.UUID) string {
	if id == uuid.Nil {
		return "-"
	}
	return id.String()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLine(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}

func (c *commandContext) printReport(cmd *cobra.Command, report model.Report) error {
	if c.json() {
		return writeJSON(cmd, report)
	}
	return printLine(cmd, renderReport(report))
}

func (c *commandContext) printRollback(cmd *cobra.Command, report model.RollbackReport) error {
	if c.json() {
		return writeJSON(cmd, report)
	}
	return printLine(cmd, renderRollback(report))
}
