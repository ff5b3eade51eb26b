package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/zoobzio/oneshot"
	"github.com/zoobzio/oneshot/internal/logging"
	"github.com/zoobzio/oneshot/metrics"
)

// buttonKey names the button carried by each click.
var buttonKey = oneshot.NewStringKey("button")

type demoOptions struct {
	button  string
	emits   int
	queue   int
	metrics bool
}

func newDemoCmd() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Click a simulated button several times; the handler runs once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.button, "button", "OK", "Label of the simulated button")
	cmd.Flags().IntVarP(&opts.emits, "emits", "n", 3, "Number of times to fire the signal")
	cmd.Flags().IntVar(&opts.queue, "queue", 0, "Dispatch through a worker with this queue size (0 = synchronous)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print collected metrics after the run")

	return cmd
}

func runDemo(ctx context.Context, out io.Writer, opts demoOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.emits < 0 {
		return fmt.Errorf("emits must not be negative, got %d", opts.emits)
	}

	logger := logging.GetLogger("demo")
	ls := oneshot.NewLiveSet(oneshot.WithLogger(logger))

	reg := prometheus.NewRegistry()
	if _, err := metrics.Register(ls, reg); err != nil {
		return err
	}

	var emitterOpts []oneshot.EmitterOption
	if opts.queue > 0 {
		emitterOpts = append(emitterOpts,
			oneshot.WithQueue(opts.queue),
			oneshot.WithErrorHandler(func(name string, err error) {
				logger.Error().Err(err).Str("signal", name).Msg("Queued emission failed")
			}),
		)
	}
	clicked := oneshot.NewEmitter[*oneshot.Args]("button.clicked", emitterOpts...)

	var calls atomic.Int32
	_, err := oneshot.Connect(clicked, func(_ context.Context, a *oneshot.Args) string {
		calls.Add(1)
		button, _ := buttonKey.From(a)
		fmt.Fprintf(out, "I am done doing my thing! You should not see me again. (%s click %v)\n", button, a.At(0))
		return "done"
	}, oneshot.WithLiveSet(ls), oneshot.WithName("print-once"))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "armed connectors: %d\n", ls.Len())

	for i := 1; i <= opts.emits; i++ {
		if _, err := clicked.Emit(ctx, oneshot.NewArgs(i).WithFields(buttonKey.Field(opts.button))); err != nil {
			clicked.Shutdown()
			return err
		}
	}
	clicked.Shutdown()

	stats := ls.Stats()
	fmt.Fprintf(out, "emits: %d, handler calls: %d\n", opts.emits, calls.Load())
	fmt.Fprintf(out, "armed connectors: %d (fired %d, disarmed %d)\n", stats.Armed, stats.Fired, stats.Disarmed)

	if opts.metrics {
		return printMetrics(out, reg)
	}
	return nil
}

// printMetrics writes one "name{labels} value" line per gathered series.
func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), formatLabels(m.GetLabel()), metricValue(m)))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, lp := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	default:
		return 0
	}
}
