package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"eventfeed/internal/feed"
)

var (
	upDesc = prometheus.NewDesc(
		"eventfeed_up", "Was the last refresh successful.", nil, nil,
	)
	refreshDurationDesc = prometheus.NewDesc(
		"eventfeed_refresh_duration_seconds", "Time taken by the last refresh.", nil, nil,
	)
	refreshesDesc = prometheus.NewDesc(
		"eventfeed_refreshes_total", "Refreshes grouped by outcome.", []string{"outcome"}, nil,
	)
	eventsDesc = prometheus.NewDesc(
		"eventfeed_events", "Events currently shown.", nil, nil,
	)
	eventsByRuleDesc = prometheus.NewDesc(
		"eventfeed_events_by_rule", "Events currently shown grouped by rule.", []string{"rule"}, nil,
	)
	lastSuccessDesc = prometheus.NewDesc(
		"eventfeed_last_success_timestamp_seconds", "Unix time of the last applied refresh.", nil, nil,
	)
)

// FeedCollector exposes feed results as Prometheus metrics. Observe is
// meant to be used as (part of) a feed's OnResult handler.
type FeedCollector struct {
	mu          sync.Mutex
	seen        bool
	up          float64
	duration    float64
	outcomes    map[string]float64
	shown       float64
	byRule      map[string]float64
	lastSuccess float64
}

func NewFeedCollector() *FeedCollector {
	return &FeedCollector{
		outcomes: map[string]float64{
			feed.Applied.String(): 0,
			feed.Failed.String():  0,
			feed.Stale.String():   0,
		},
		byRule: map[string]float64{},
	}
}

func (c *FeedCollector) Observe(r feed.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen = true
	c.outcomes[r.Outcome.String()]++
	c.duration = r.Duration.Seconds()
	if r.OK() {
		c.up = 1
	} else {
		c.up = 0
	}

	if r.Outcome != feed.Applied {
		return
	}
	c.shown = float64(len(r.Events))
	c.byRule = make(map[string]float64)
	for _, e := range r.Events {
		rule := e.Rule
		if rule == "" {
			rule = "unknown"
		}
		c.byRule[rule]++
	}
	done := r.Started.Add(r.Duration)
	c.lastSuccess = float64(done.Unix()) + float64(done.Nanosecond())/1e9
}

func (c *FeedCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- refreshDurationDesc
	ch <- refreshesDesc
	ch <- eventsDesc
	ch <- eventsByRuleDesc
	ch <- lastSuccessDesc
}

func (c *FeedCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, c.up)
	for outcome, n := range c.outcomes {
		ch <- prometheus.MustNewConstMetric(refreshesDesc, prometheus.CounterValue, n, outcome)
	}
	if !c.seen {
		return
	}

	ch <- prometheus.MustNewConstMetric(refreshDurationDesc, prometheus.GaugeValue, c.duration)
	ch <- prometheus.MustNewConstMetric(eventsDesc, prometheus.GaugeValue, c.shown)
	for rule, n := range c.byRule {
		ch <- prometheus.MustNewConstMetric(eventsByRuleDesc, prometheus.GaugeValue, n, rule)
	}
	if c.lastSuccess > 0 {
		ch <- prometheus.MustNewConstMetric(lastSuccessDesc, prometheus.GaugeValue, c.lastSuccess)
	}
}
