package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/llxisdsh/syncsim"
	"github.com/llxisdsh/syncsim/internal/config"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	cfg        *config.Config
	configFile string
	logEvents  bool
}

func newRootCmd() *cobra.Command {
	o := &options{cfg: config.Default()}
	cmd := &cobra.Command{
		Use:           "syncsim",
		Short:         "Run producer-consumer and reader-writer simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := cmd.PersistentFlags()
	f.StringVar(&o.configFile, "config", "", "path of a TOML configuration file")
	f.StringVar(&o.cfg.LogLevel, "log-level", o.cfg.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&o.cfg.LogFile, "log-file", o.cfg.LogFile, "log file path; stderr when empty")
	f.StringVar(&o.cfg.MetricsAddr, "metrics-addr", o.cfg.MetricsAddr, "serve Prometheus metrics on this address")
	f.BoolVar(&o.cfg.Quiet, "quiet", o.cfg.Quiet, "do not print event lines")
	f.BoolVar(&o.logEvents, "log-events", false, "report events through the logger instead of stdout")

	cmd.AddCommand(newBufferCmd(o), newReaderWriterCmd(o))
	return cmd
}

func newBufferCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Run the bounded-buffer producer-consumer simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.complete(cmd.Flags()); err != nil {
				return err
			}
			if err := o.cfg.ValidateBuffer(); err != nil {
				return err
			}
			return o.run(cmd, func(sink syncsim.EventSink, stop *syncsim.Latch) syncsim.Engine {
				b := o.cfg.Buffer
				return syncsim.NewBoundedBufferEngine(b.Size, b.Producers, b.Consumers, sink, stop,
					syncsim.WithTimings(o.cfg.Timings))
			}, o.cfg.BufferDuration())
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.cfg.Buffer.Producers, "producers", o.cfg.Buffer.Producers, "number of producers")
	f.IntVar(&o.cfg.Buffer.Consumers, "consumers", o.cfg.Buffer.Consumers, "number of consumers")
	f.IntVar(&o.cfg.Buffer.Size, "buffer-size", o.cfg.Buffer.Size, "number of buffer slots")
	f.IntVar(&o.cfg.Buffer.Seconds, "seconds", o.cfg.Buffer.Seconds, "simulation length in seconds")
	return cmd
}

func newReaderWriterCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rw",
		Aliases: []string{"reader-writer"},
		Short:   "Run the reader-writer simulation (5 readers, 2 writers)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.complete(cmd.Flags()); err != nil {
				return err
			}
			if err := o.cfg.ValidateReaderWriter(); err != nil {
				return err
			}
			return o.run(cmd, func(sink syncsim.EventSink, stop *syncsim.Latch) syncsim.Engine {
				return syncsim.NewReaderWriterEngine(syncsim.DefaultReaders, syncsim.DefaultWriters, sink, stop,
					syncsim.WithTimings(o.cfg.Timings))
			}, o.cfg.ReaderWriterDuration())
		},
	}
	cmd.Flags().IntVar(&o.cfg.ReaderWriter.Seconds, "seconds", o.cfg.ReaderWriter.Seconds, "simulation length in seconds")
	return cmd
}

// complete loads the configuration file, if any, and lets flags given on
// the command line win over it.
func (o *options) complete(flags *pflag.FlagSet) error {
	if o.configFile == "" {
		return nil
	}
	changed := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})
	if err := o.cfg.Load(o.configFile); err != nil {
		return err
	}
	for name, v := range changed {
		if err := flags.Set(name, v); err != nil {
			return errors.Annotatef(err, "reapply flag --%s", name)
		}
	}
	return nil
}

type engineFactory func(sink syncsim.EventSink, stop *syncsim.Latch) syncsim.Engine

func (o *options) run(cmd *cobra.Command, build engineFactory, d time.Duration) error {
	if err := initLogger(o.cfg); err != nil {
		return err
	}
	ctx, cancel := withSignals(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := syncsim.NewMetrics(reg)
	if o.cfg.MetricsAddr != "" {
		shutdown, err := serveMetrics(o.cfg.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	var out syncsim.EventSink
	switch {
	case o.cfg.Quiet:
	case o.logEvents:
		out = syncsim.NewLogSink(nil)
	default:
		out = syncsim.NewWriterSink(cmd.OutOrStdout())
	}
	tracker := &syncsim.Tracker{}
	sink := syncsim.Tee(out, tracker, metrics)

	var stop syncsim.Latch
	e := build(sink, &stop)
	if err := syncsim.RunFor(ctx, e, &stop, d, syncsim.WithNotices(sink)); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), tracker.Snapshot())
	return nil
}

func printSummary(w io.Writer, progress []syncsim.Progress) {
	fmt.Fprintln(w, "Summary:")
	for _, p := range progress {
		fmt.Fprintf(w, "  %-12s events=%-4d completed=%-4d", p.Actor, p.Events, p.Completed)
		if len(p.Slots) > 0 {
			fmt.Fprintf(w, " slots=%d", len(p.Slots))
		}
		fmt.Fprintln(w)
	}
}
