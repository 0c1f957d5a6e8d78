package logger

import "context"

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		SessionID string
		RideID    string
	}

	logCtxKeyStruct struct{}
)

var logCtxKey = &logCtxKeyStruct{}

func fromContext(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(logCtxKey).(LogCtx)
	return lc
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := fromContext(ctx)
	lc.Action = action
	return context.WithValue(ctx, logCtxKey, lc)
}

// WithSessionID adds or updates the SessionID in the LogCtx within the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	lc := fromContext(ctx)
	lc.SessionID = sessionID
	return context.WithValue(ctx, logCtxKey, lc)
}

// WithRideID adds or updates the RideID in the LogCtx within the context
func WithRideID(ctx context.Context, rideID string) context.Context {
	lc := fromContext(ctx)
	lc.RideID = rideID
	return context.WithValue(ctx, logCtxKey, lc)
}
