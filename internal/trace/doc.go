// Package trace records what the compiler and the interpreter are doing.
//
// Enable tracing from the command line:
//
//	jstep run --trace=- --trace-level=detail Main.jst
//
// Implementations:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events, dumped after an uncaught fault
//   - MultiTracer: fans out to several tracers
//
// Levels: off, error, phase (driver and pass boundaries), detail (per unit
// events and interpreter steps).
//
// Interpreter steps are emitted as point events in the form
//
//	[depth=N] Class.method pc=12 op
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
