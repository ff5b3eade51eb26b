// Package metrics exposes a oneshot LiveSet to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/oneshot"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "oneshot").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func defaultConfig() Config {
	return Config{Namespace: "oneshot"}
}

// Collector reports LiveSet statistics on every scrape.
//
// Metrics collected:
//   - oneshot_armed_connectors: connectors waiting for their signal
//   - oneshot_armed_by_signal{signal}: armed connectors per signal
//   - oneshot_fired_total: connectors whose handler ran
//   - oneshot_disarmed_total: connectors closed before firing
//   - oneshot_double_fires_total: rejected dispatches to already-fired connectors
type Collector struct {
	set *oneshot.LiveSet

	armed       *prometheus.Desc
	armedSignal *prometheus.Desc
	fired       *prometheus.Desc
	disarmed    *prometheus.Desc
	doubleFires *prometheus.Desc
}

// NewCollector creates a collector for ls.
func NewCollector(ls *oneshot.LiveSet, opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	name := func(n string) string {
		return prometheus.BuildFQName(config.Namespace, config.Subsystem, n)
	}

	return &Collector{
		set: ls,
		armed: prometheus.NewDesc(name("armed_connectors"),
			"Number of connectors waiting for their signal",
			nil, config.ConstLabels),
		armedSignal: prometheus.NewDesc(name("armed_by_signal"),
			"Number of armed connectors per signal",
			[]string{"signal"}, config.ConstLabels),
		fired: prometheus.NewDesc(name("fired_total"),
			"Total number of connectors whose handler was invoked",
			nil, config.ConstLabels),
		disarmed: prometheus.NewDesc(name("disarmed_total"),
			"Total number of connectors closed before their signal fired",
			nil, config.ConstLabels),
		doubleFires: prometheus.NewDesc(name("double_fires_total"),
			"Total number of dispatches rejected because the connector had already fired",
			nil, config.ConstLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.armed
	ch <- c.armedSignal
	ch <- c.fired
	ch <- c.disarmed
	ch <- c.doubleFires
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.set.Stats()

	ch <- prometheus.MustNewConstMetric(c.armed, prometheus.GaugeValue, float64(stats.Armed))
	for signal, n := range stats.PerSignal {
		ch <- prometheus.MustNewConstMetric(c.armedSignal, prometheus.GaugeValue, float64(n), signal)
	}
	ch <- prometheus.MustNewConstMetric(c.fired, prometheus.CounterValue, float64(stats.Fired))
	ch <- prometheus.MustNewConstMetric(c.disarmed, prometheus.CounterValue, float64(stats.Disarmed))
	ch <- prometheus.MustNewConstMetric(c.doubleFires, prometheus.CounterValue, float64(stats.DoubleFires))
}

// Register creates a collector for ls and registers it with reg.
// A nil reg means prometheus.DefaultRegisterer.
func Register(ls *oneshot.LiveSet, reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := NewCollector(ls, opts...)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
