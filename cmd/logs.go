package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/andreeapeiu/Mini-Shell/core/logger"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the audit log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show aggregate statistics over the audit log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAuditLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

var interactionsCommand = &cobra.Command{
	Use:   "interactions",
	Short: "Show the audit log grouped by session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAuditLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.InteractionReport
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(&report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

var (
	colorBoldGreen = color.New(color.FgGreen, color.Bold)
	colorBoldRed   = color.New(color.FgRed, color.Bold)
	colorBoldCyan  = color.New(color.FgCyan, color.Bold)
	colorBoldBlue  = color.New(color.FgBlue, color.Bold)
)

var catCommand = &cobra.Command{
	Use:   "cat",
	Short: "Print the audit log, one line per event.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAuditLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		out := cmd.OutOrStdout()
		return logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			stamp := le.Time().UTC().Format(time.RFC3339)

			switch {
			case le.LoginAttempt != nil:
				la := le.LoginAttempt
				label := colorBoldGreen.Sprint("LOGIN OK  ")
				if la.Result != logger.ResultSuccess {
					label = colorBoldRed.Sprint("LOGIN FAIL")
				}
				fmt.Fprintf(out, "%s %s %s user=%q password=%q addr=%s\n",
					stamp, le.SessionID, label, la.Username, la.Password, la.RemoteAddr)

			case le.CommandRun != nil:
				cr := le.CommandRun
				fmt.Fprintf(out, "%s %s %s status=%d %s\n",
					stamp, le.SessionID, colorBoldCyan.Sprint("RUN       "), cr.Status, cr.Line)

			case le.SessionEnd != nil:
				se := le.SessionEnd
				duration := time.Duration(se.DurationMicros) * time.Microsecond
				fmt.Fprintf(out, "%s %s %s status=%d after %v\n",
					stamp, le.SessionID, colorBoldBlue.Sprint("DISCONNECT"), se.ExitStatus, duration)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCommand)
	logsCmd.AddCommand(interactionsCommand)
	logsCmd.AddCommand(catCommand)
}
