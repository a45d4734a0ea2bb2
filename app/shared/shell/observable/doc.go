// Package observable wraps command and query handlers with metrics, tracing, and logging,
// so that the handlers themselves contain only the load, mutate, save workflow.
//
// The wrappers are applied at wiring time, not inside the handler constructors:
//
//	coreHandler := addreview.NewCommandHandler(store)
//
//	handler, err := observable.NewCommandWrapper[addreview.Command](
//		coreHandler,
//		observable.WithCommandMetrics[addreview.Command](metricsCollector),
//		observable.WithCommandTracing[addreview.Command](tracingCollector),
//		observable.WithCommandContextualLogging[addreview.Command](contextualLogger),
//	)
//
//	result, err := handler.Handle(ctx, command)
//
// Every concern is optional. Tests of the business logic use the core handlers directly.
//
// The CommandWrapper records one retry summary per command from the HandlerResult.
// Per-attempt retry metrics come from shell.WithMetrics on the handler's retry options;
// configure one of the two, not both.
package observable
