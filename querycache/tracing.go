package querycache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName    = "github.com/goliatone/go-query-cache/querycache"
	fetchSpanName = "querycache.fetch"

	attrKey   = attribute.Key("cache.key")
	attrHit   = attribute.Key("cache.hit")
	attrType  = attribute.Key("cache.type")
	attrTable = attribute.Key("db.sql.table")
)

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func startFetchSpan(ctx context.Context, tracer trace.Tracer, label, table, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, fetchSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attrKey.String(key),
			attrType.String(label),
			attrTable.String(table),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
