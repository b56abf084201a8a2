package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"warnsync/internal/config"
	"warnsync/internal/poller"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "warnsync",
		Short:         "Synchronize the newest published warning file into a database table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "config/config.json", "Config file path")
	root.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newRecordsCmd(),
		newRetypeCmd(),
		newPurgeCmd(),
		newPingCmd(),
		newEncryptCmd(),
		newVersionCmd(),
	)
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the feed root until interrupted",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var notifier poller.Notifier
			if pub := a.connectNotifier(); pub != nil {
				defer pub.Close()
				notifier = pub
			}
			p := a.newPoller(notifier, a.cfg.Poll.Watch)

			if a.cfg.HTTP.Addr != "" {
				srv := newStatusServer(p, a.engine, a.cfg.WarnTypeID, a.log)
				srv.Start(a.cfg.HTTP.Addr)
				defer srv.Shutdown(context.Background())
			}

			a.log.WithField("root", a.cfg.Path).Info("warnsync started")
			return p.Run(ctx)
		}),
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single poll cycle and report its outcome",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			res := a.newPoller(nil, false).Tick(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "outcome=%s", res.Outcome)
			if res.File != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " file=%s", res.File)
			}
			if res.Outcome == poller.OutcomeSynced {
				fmt.Fprintf(cmd.OutOrStdout(), " publication_time=%q deleted=%d inserted=%d", res.PublicationTime, res.Deleted, res.Inserted)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if res.Outcome.Failed() {
				return fmt.Errorf("poll cycle %s: %w", res.Outcome, res.Err)
			}
			return nil
		}),
	}
}

func newRecordsCmd() *cobra.Command {
	var typeID int
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the stored records of one warning type",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			records, err := a.engine.SelectByType(cmd.Context(), typeID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tTIME\tINTERVAL\tGRADE\tTHRESHOLD\tTYPE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%g\t%s\n", r.Code, r.ValidTime, r.IntervalMinutes, r.Grade, r.Threshold, typeLabel(r.WarningTypeID))
			}
			if err := tw.Flush(); err != nil {
				return fmt.Errorf("write records: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d records\n", len(records))
			return nil
		}),
	}
	cmd.Flags().IntVar(&typeID, "type", 0, "Warning type id")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newRetypeCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "retype",
		Short: "Move every record of one warning type to another",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			n, err := a.engine.UpdateType(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d rows\n", n)
			return nil
		}),
	}
	cmd.Flags().IntVar(&from, "from", 0, "Current warning type id")
	cmd.Flags().IntVar(&to, "to", 0, "New warning type id")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newPurgeCmd() *cobra.Command {
	var typeID int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every record of one warning type",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			n, err := a.engine.DeleteByType(cmd.Context(), typeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d rows\n", n)
			return nil
		}),
	}
	cmd.Flags().IntVar(&typeID, "type", 0, "Warning type id")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			if err := a.engine.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", a.cfg.DB.String())
			return nil
		}),
	}
}

func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt-password <password>",
		Short: "Print the enc: form of a database password",
		Long:  "Encrypts the password with the 32-byte key in " + config.EncryptionKeyEnv + " for use as db.password.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.EncryptPassword(args[0], os.Getenv(config.EncryptionKeyEnv))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "warnsync", version)
		},
	}
}

func typeLabel(id *int) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}
