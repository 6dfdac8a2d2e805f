package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/finflow/internal/logger"
)

const instrumentationName = "gitlab.com/yelinaung/finflow/internal/service"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	transfersCounter    metric.Int64Counter
	transactionsCounter metric.Int64Counter
	budgetAlertsCounter metric.Int64Counter
)

func init() {
	var err error
	if transfersCounter, err = meter.Int64Counter("finflow.transfers",
		metric.WithDescription("Completed transfers between accounts")); err != nil {
		otel.Handle(err)
	}
	if transactionsCounter, err = meter.Int64Counter("finflow.transactions.recorded",
		metric.WithDescription("Transactions recorded, by type")); err != nil {
		otel.Handle(err)
	}
	if budgetAlertsCounter, err = meter.Int64Counter("finflow.budget.alerts",
		metric.WithDescription("Budget alerts raised, by type")); err != nil {
		otel.Handle(err)
	}
}

// startSpan opens a span tagged with the hashed user id.
func startSpan(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("user.hash", logger.HashUserID(userID)),
	))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
