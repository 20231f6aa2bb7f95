package httpapi

import "context"

// serverBaseCtx is canceled on shutdown so in-flight dispatch calls stop
// waiting for their turn.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// dispatchContext derives the context for one dispatch call: canceled when
// the client goes away, when the server shuts down, or when the request
// timeout expires.
func dispatchContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(serverBaseCtx, cancel)
	if requestTimeout > 0 {
		tctx, tcancel := context.WithTimeout(ctx, requestTimeout)
		return tctx, func() { tcancel(); stop(); cancel() }
	}
	return ctx, func() { stop(); cancel() }
}
