package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/wftrack/internal/config"
	"github.com/petrijr/wftrack/internal/persistence"
	"github.com/petrijr/wftrack/pkg/api"
)

// instancePath accepts either an instance id or a path to a log file.
func (a *app) instancePath(arg string) string {
	if strings.HasSuffix(arg, persistence.InstanceExt) || strings.ContainsRune(arg, filepath.Separator) {
		return arg
	}
	return persistence.InstancePath(a.cfg.LogLocation, arg)
}

func newListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked instances",
		Long:  "Loads every instance log in the tracking directory and prints its status and record count.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			histories, err := a.query.LoadDirectory(cmd.Context(), a.cfg.LogLocation)
			if err != nil {
				return err
			}
			views := make([]instanceView, 0, len(histories))
			for _, h := range histories {
				views = append(views, instanceView{
					InstanceID: h.InstanceID,
					Status:     string(h.Status),
					Records:    len(h.Records),
					LastWrite:  h.LastWrite,
				})
			}
			if output == formatText {
				return writeInstanceTable(cmd.OutOrStdout(), views)
			}
			return encode(cmd.OutOrStdout(), output, views)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var (
		output     string
		checkOrder bool
	)

	cmd := &cobra.Command{
		Use:   "show <instance-id|path>",
		Short: "Print the history of one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			h, err := a.query.LoadInstance(a.instancePath(args[0]))
			if err != nil {
				return err
			}
			if checkOrder {
				if err := h.CheckOrder(); err != nil {
					return err
				}
			}
			view := viewHistory(h)
			if output == formatText {
				return writeHistoryText(cmd.OutOrStdout(), view)
			}
			return encode(cmd.OutOrStdout(), output, view)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&checkOrder, "check-order", false, "fail when record order numbers decrease")
	return cmd
}

func newDefinitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "definition <instance-id|path>",
		Short: "Print the activity definition document of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.query.LoadInstance(a.instancePath(args[0]))
			if err != nil {
				return err
			}
			doc, err := a.query.GetDefinition(h)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow writes to instance logs",
		Long:  "Prints one line per instance log write until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return a.query.Watch(cmd.Context(), a.cfg.LogLocation, func(h *api.InstanceHistory) {
				fmt.Fprintf(out, "%s  %s  %s  %d records\n",
					h.LastWrite.Format(time.DateTime), h.InstanceID, h.Status, len(h.Records))
			})
		},
	}
}

func newIndexCmd(a *app) *cobra.Command {
	var (
		output string
		status string
	)

	cmd := &cobra.Command{
		Use:   "index [instance-id]",
		Short: "Query the record index",
		Long:  "Without arguments lists indexed instances, optionally filtered by --status. With an instance id prints its indexed records.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			if a.cfg.Index.Driver == "" || a.cfg.Index.Driver == config.DriverNone {
				return errors.New("no record index configured (set index.driver)")
			}

			ctx := cmd.Context()
			idx, closeIndex, err := config.OpenIndex(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeIndex() }()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				records, err := idx.ListRecords(ctx, args[0])
				if err != nil {
					return err
				}
				views := viewRecords(records)
				if output == formatText {
					return writeRecordTable(out, views)
				}
				return encode(out, output, views)
			}

			var filter persistence.IndexFilter
			if status != "" {
				st, err := api.ParseInstanceStatus(status)
				if err != nil {
					return err
				}
				filter.Status = st
			}
			instances, err := idx.ListInstances(ctx, filter)
			if err != nil {
				return err
			}
			views := make([]instanceView, 0, len(instances))
			for _, in := range instances {
				views = append(views, viewIndexed(in))
			}
			if output == formatText {
				return writeInstanceTable(out, views)
			}
			return encode(out, output, views)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	cmd.Flags().StringVar(&status, "status", "", "only instances with this status")
	return cmd
}
