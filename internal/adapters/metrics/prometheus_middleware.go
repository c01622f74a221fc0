package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
)

// PrometheusMiddleware records duration and outcome of every request sent
// through the mediator. A nil collector disables it.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(extractRequestName(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}

// extractRequestName turns "*commands.RecordMovementCommand" into "RecordMovementCommand"
func extractRequestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

func requestKind(name string) string {
	switch {
	case strings.HasSuffix(name, "Command"):
		return "command"
	case strings.HasSuffix(name, "Query"):
		return "query"
	default:
		return "other"
	}
}
