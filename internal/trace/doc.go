// Package trace records what the bramble pipeline is doing while it runs.
//
// Every pass opens a span with Begin and closes it with End. The driver
// decides where events go: a stream sink prints them as they happen, a
// ring sink keeps the tail in memory so it can be dumped after a failure.
//
//	tr, _ := trace.New(trace.Config{Level: trace.LevelPhase, Mode: trace.ModeStream})
//	ctx = trace.WithTracer(ctx, tr)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", 0)
//	defer span.End("")
package trace
