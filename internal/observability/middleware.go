package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/martinemde/plancritic/completion"
)

var tracer = otel.Tracer("plancritic/completion")

// CompletionMiddleware records a span and call metrics around every
// completion request.
func CompletionMiddleware() completion.Middleware {
	return func(ctx context.Context, req completion.Request, next func(context.Context, completion.Request) (*completion.Response, error)) (*completion.Response, error) {
		ctx, span := tracer.Start(ctx, "completion.complete")
		defer span.End()

		span.SetAttributes(
			attribute.String("llm.provider", req.Provider),
			attribute.String("llm.model", req.Model),
		)
		if req.Temperature != nil {
			span.SetAttributes(attribute.Float64("llm.temperature", *req.Temperature))
		}

		start := time.Now()
		resp, err := next(ctx, req)
		durationMS := int(time.Since(start).Milliseconds())

		if err != nil {
			RecordCompletionCall(req.Provider, req.Model, "error", durationMS)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		RecordCompletionCall(req.Provider, req.Model, "success", durationMS)
		RecordTokens(req.Provider, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		span.SetAttributes(
			attribute.String("llm.response_id", resp.ID),
			attribute.String("llm.finish_reason", resp.FinishReason.Reason),
			attribute.Int("llm.usage.input_tokens", resp.Usage.InputTokens),
			attribute.Int("llm.usage.output_tokens", resp.Usage.OutputTokens),
		)
		span.SetStatus(codes.Ok, "success")
		return resp, nil
	}
}
