package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/buildnotify/internal/metrics"
	"github.com/shaharia-lab/buildnotify/internal/notification"
)

func TestCollector_Counts(t *testing.T) {
	c := metrics.New()

	c.Sent(notification.KindFinished, 3)
	c.Sent(notification.KindFinished, 1)
	c.Failed(notification.KindFixed)
	c.Skipped(notification.KindFinished, notification.SkipPolicy)
	c.Skipped(notification.KindFinished, notification.SkipPolicy)
	c.EventDropped()

	body := scrape(t, c)
	assert.Contains(t, body, `buildnotify_notifications_sent_total{event="build_finished"} 2`)
	assert.Contains(t, body, `buildnotify_notification_recipients_total{event="build_finished"} 4`)
	assert.Contains(t, body, `buildnotify_notifications_failed_total{event="build_fixed"} 1`)
	assert.Contains(t, body, `buildnotify_notifications_skipped_total{event="build_finished",reason="policy"} 2`)
	assert.Contains(t, body, `buildnotify_events_dropped_total 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.Failed(notification.KindFinished)

	n, err := testutil.GatherAndCount(a.Registry(), "buildnotify_notifications_failed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(b.Registry(), "buildnotify_notifications_failed_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
