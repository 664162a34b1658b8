// Package ahttp lets route handlers defer producing their HTTP response: the handler
// returns without a body, the connection is held open, and the final status, headers
// and body arrive later from a callback running on a single-threaded scheduler loop.
//
// # Overview
//
// ahttp extends the standard library's HTTP handling with one core contract: suspend,
// do deferred work, finish exactly once. A deferred route never answers synchronously.
// When it matches, the request parks, the handler body is enqueued for the next tick of
// a [Loop], and the response is flushed the moment some callback calls
// [Responder.Finish] with the final body.
//
// A minimal example:
//
//	loop := ahttp.NewLoop()
//	mux := ahttp.NewMux(loop)
//
//	mux.AGet("/slow", func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
//	    time.AfterFunc(time.Second, func() {
//	        rw.Finish("hello async")
//	    })
//	    return nil
//	})
//
//	go loop.Run(context.Background())
//	http.ListenAndServe(":8080", mux)
//
// # Handler Signature
//
// ahttp handlers differ from standard http.Handlers in three ways:
//
//   - They receive a [*Responder] instead of a response writer: the mutable response
//     descriptor plus the capability to finish the request, usable from any later
//     callback.
//   - They return an error; returned errors are captured at the body boundary and
//     rendered through the registered error handlers, never propagated into the loop.
//   - For deferred routes the body runs on a scheduler tick, decoupled from the
//     request's original call frame.
//
// The handler signature is:
//
//	func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error
//
// # Deferred Routes
//
// [Mux.AGet], [Mux.APost], [Mux.APut], [Mux.ADelete] and [Mux.AHead] register deferred
// routes ([Mux.AGet] also registers the matching HEAD route). The body runs with
// outcome capture, and ends in one of three ways:
//
//   - Normally: no response is produced; the body is responsible for arranging an
//     eventual [Responder.Finish], typically from a timer or an outbound call's
//     callback. Until then the request hangs; there is no built-in timeout.
//   - With a [Halt]: the carried values coerce onto the descriptor and the request
//     finishes immediately.
//   - With any other error: the error handlers decide the body, the status comes from
//     [CodeOf], and the request finishes immediately.
//
// Plain synchronous routes registered with [Mux.Handle] share the error handling but
// render as soon as the handler returns; calling Finish there only assigns the body.
//
// # Halting
//
// [Halt] is the early-exit signal, returned as a value rather than thrown, so the
// handler boundary is the one place that deals with it:
//
//	mux.AGet("/negotiate", func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
//	    if r.Header.Get("Accept") != "application/json" {
//	        return ahttp.Halt(406, "Format not supported")
//	    }
//	    rw.Finish(`{"ok":true}`)
//	    return nil
//	})
//
// # Error Handling
//
// Error handlers are registered per error type or per status code:
//
//	ahttp.HandleError(mux, func(rw *ahttp.Responder, r *http.Request, err *ParseError) string {
//	    return "problem: " + err.Error()
//	})
//	mux.HandleStatus(406, func(rw *ahttp.Responder, r *http.Request) string {
//	    return "problem: " + rw.BodyText()
//	})
//
// Without a matching handler, clients get the settled status with a body naming the
// error. With [Mux.ShowExceptions] on, the full error detail renders instead.
//
// # The Scheduler Loop
//
// All deferred bodies and completion callbacks for a mux run on its [Scheduler]. [Loop]
// is the bundled single-threaded implementation: one goroutine, a task queue, no
// parallel execution between ticks. The completion callback for a request fires
// strictly after that request parked, and at most once; a second [Responder.Finish] is
// dropped and logged.
package ahttp
