package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the metrics collected by the default registry to a Prometheus
// Pushgateway once. Short-lived commands call it before exiting.
func Push(ctx context.Context, url, job string, grouping map[string]string) error {
	return pushFrom(ctx, prometheus.DefaultGatherer, url, job, grouping)
}

func pushFrom(
	ctx context.Context,
	g prometheus.Gatherer,
	url, job string,
	grouping map[string]string,
) error {
	pusher := push.New(url, job).Gatherer(g)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
