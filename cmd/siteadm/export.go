package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/admin"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/contacts"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/export"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/leads"
)

var exportOpts struct {
	format string
	out    string
	status string
	query  string
}

var exportCmd = &cobra.Command{
	Use:       "export leads|contacts",
	Short:     "Write leads or contact messages to a file",
	Long:      `Export every matching record as csv, json or pdf. Without --out the file name is derived from the kind and today's date.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{admin.KindLeads, admin.KindContacts},
	RunE:      runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOpts.format, "format", string(export.FormatCSV), "csv, json or pdf")
	f.StringVarP(&exportOpts.out, "out", "o", "", "output path, - for stdout")
	f.StringVar(&exportOpts.status, "status", "", "only records with this status")
	f.StringVar(&exportOpts.query, "q", "", "free text search")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportOpts.format)
	if err != nil {
		return err
	}
	filter := admin.Filter{
		Kind:   args[0],
		Query:  strings.ToLower(strings.TrimSpace(exportOpts.query)),
		Status: strings.ToLower(strings.TrimSpace(exportOpts.status)),
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	records, count, err := loadRecords(ctx, filter)
	if err != nil {
		return err
	}

	now := time.Now()
	body, err := export.Render(format, records, now)
	if err != nil {
		return err
	}

	out := exportOpts.out
	if out == "" {
		out = export.Filename(filter.Kind, format, now)
	}
	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		if err := os.WriteFile(out, body, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Info("export written", zap.String("path", out), zap.Int("count", count))
		return nil
	}
	_, err = w.Write(body)
	return err
}

func loadRecords(ctx context.Context, filter admin.Filter) (any, int, error) {
	if filter.Kind == admin.KindLeads {
		pool, err := openPool(ctx)
		if err != nil {
			return nil, 0, err
		}
		defer pool.Close()

		items, err := leads.NewRepository(pool).List(ctx, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("list leads: %w", err)
		}
		items = filter.Leads(items)
		return items, len(items), nil
	}

	db, err := openDB(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	items, err := contacts.NewStore(db).List(ctx, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	items = filter.Contacts(items)
	return items, len(items), nil
}
