package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventfeed/internal/feed"
	"eventfeed/pkg/models"
)

func TestFeedCollector_BeforeFirstRefresh(t *testing.T) {
	c := NewFeedCollector()

	// eventfeed_up plus one refresh counter per outcome.
	assert.Equal(t, 4, testutil.CollectAndCount(c))
}

func TestFeedCollector_ObservesResults(t *testing.T) {
	c := NewFeedCollector()
	started := time.Unix(1700000000, 0)

	c.Observe(feed.Result{
		Outcome:  feed.Applied,
		Started:  started,
		Duration: 250 * time.Millisecond,
		Events: []models.Event{
			{Rule: "intrusion"},
			{Rule: "intrusion"},
			{},
		},
	})
	c.Observe(feed.Result{
		Outcome: feed.Stale,
		Started: started,
		Events:  []models.Event{{Rule: "loitering"}},
	})
	c.Observe(feed.Result{
		Outcome: feed.Failed,
		Started: started,
		Err:     errors.New("connection refused"),
	})

	expected := `
# HELP eventfeed_events Events currently shown.
# TYPE eventfeed_events gauge
eventfeed_events 3
# HELP eventfeed_events_by_rule Events currently shown grouped by rule.
# TYPE eventfeed_events_by_rule gauge
eventfeed_events_by_rule{rule="intrusion"} 2
eventfeed_events_by_rule{rule="unknown"} 1
# HELP eventfeed_refreshes_total Refreshes grouped by outcome.
# TYPE eventfeed_refreshes_total counter
eventfeed_refreshes_total{outcome="applied"} 1
eventfeed_refreshes_total{outcome="failed"} 1
eventfeed_refreshes_total{outcome="stale"} 1
# HELP eventfeed_up Was the last refresh successful.
# TYPE eventfeed_up gauge
eventfeed_up 0
# HELP eventfeed_last_success_timestamp_seconds Unix time of the last applied refresh.
# TYPE eventfeed_last_success_timestamp_seconds gauge
eventfeed_last_success_timestamp_seconds 1.70000000025e+09
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"eventfeed_events",
		"eventfeed_events_by_rule",
		"eventfeed_refreshes_total",
		"eventfeed_up",
		"eventfeed_last_success_timestamp_seconds",
	)
	require.NoError(t, err)
}

func TestFeedCollector_EmptyApplyResetsRules(t *testing.T) {
	c := NewFeedCollector()

	c.Observe(feed.Result{Outcome: feed.Applied, Events: []models.Event{{Rule: "intrusion"}}})
	c.Observe(feed.Result{Outcome: feed.Applied, Events: []models.Event{}})

	assert.Equal(t, 0, testutil.CollectAndCount(c, "eventfeed_events_by_rule"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "eventfeed_events"))
}
