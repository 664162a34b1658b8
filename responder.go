package ahttp

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompleteFunc is the server-owned completion callback. Invoking it flushes the final
// status, headers and body to the client connection and releases the parked request. It
// fires at most once per request.
type CompleteFunc func(status int, header http.Header, body io.Reader)

// Responder holds the mutable response descriptor of one in-flight request and, for
// deferred routes, the completion callback. It is the finish capability handed to the
// handler: any later callback may keep a reference and complete the request long after
// the handler body returned.
//
// The descriptor must not reach the transport before [Responder.Finish]; until then the
// status defaults to 200 and the body is empty.
type Responder struct {
	mu        sync.Mutex
	status    int
	header    http.Header
	body      io.Reader
	pending   bool
	finished  bool
	abandoned bool
	complete  CompleteFunc
	settle    func(error)
	route     string
	logs      Logger
}

func newResponder(route string, pending bool, complete CompleteFunc, logs Logger) *Responder {
	return &Responder{
		header:   make(http.Header),
		pending:  pending,
		complete: complete,
		route:    route,
		logs:     logs,
	}
}

// Status sets the response status code without completing the request.
func (rw *Responder) Status(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.status = code
}

// Header returns the header map of the response descriptor. Mutate it only from the
// handler body or from callbacks running on the same scheduler loop.
func (rw *Responder) Header() http.Header {
	return rw.header
}

// BodyText drains the current body into a string. The descriptor keeps an equivalent
// replayable body, so completing afterwards still renders the same bytes.
func (rw *Responder) BodyText() string {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.body == nil {
		return ""
	}

	b, _ := io.ReadAll(rw.body)
	rw.body = bytes.NewReader(b)

	return string(b)
}

// Finish sets the body and, if this request was suspended by a deferred route, invokes
// the completion callback with the final (status, headers, body). Pass nil to complete
// with the body as-is. Accepted body values are string, []byte and io.Reader; anything
// else panics with a [*TypeError]. On a request that was never suspended, Finish only
// assigns the body and the route renders as usual when the handler returns.
//
// A second Finish on the same suspended request is dropped and logged; the completion
// callback never fires twice. A Finish on a request the client already abandoned is
// dropped as well, logged as a late finish.
func (rw *Responder) Finish(v any) {
	rw.mu.Lock()

	if v != nil {
		body, err := bodyReader(v)
		if err != nil {
			rw.mu.Unlock()
			panic(err)
		}

		rw.body = body
	}

	if !rw.pending {
		rw.mu.Unlock()
		return
	}

	if rw.finished {
		abandoned := rw.abandoned
		rw.mu.Unlock()

		if abandoned {
			rw.logs.LogFinishAfterAbandon(rw.route)
		} else {
			rw.logs.LogRepeatFinish(rw.route)
		}

		return
	}

	rw.finished = true
	status, header, body := rw.status, rw.header, rw.body
	complete := rw.complete
	rw.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}

	complete(status, header, body)
}

// Fail settles the request through the error path, exactly as if the handler body had
// returned err. Call it from asynchronous callbacks whose errors cannot propagate up a
// call stack.
func (rw *Responder) Fail(err error) {
	rw.settle(err)
}

// abandon marks the request finished without invoking the completion callback. It
// reports whether it won: false means a Finish already committed and its completion is
// in flight.
func (rw *Responder) abandon() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.finished {
		return false
	}

	rw.finished = true
	rw.abandoned = true

	return true
}

func (rw *Responder) setBody(v any) error {
	body, err := bodyReader(v)
	if err != nil {
		return err
	}

	rw.mu.Lock()
	rw.body = body
	rw.mu.Unlock()

	return nil
}

func (rw *Responder) setBodyString(s string) {
	rw.mu.Lock()
	rw.body = strings.NewReader(s)
	rw.mu.Unlock()
}

// mergeHeader merges h into the descriptor by key: values for a key that is present in
// both replace the existing values, other keys are kept.
func (rw *Responder) mergeHeader(h http.Header) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for k, vals := range h {
		rw.header[http.CanonicalHeaderKey(k)] = vals
	}
}

func (rw *Responder) statusOr(def int) int {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.status == 0 {
		return def
	}

	return rw.status
}

// flushTo renders the descriptor to w. Used exactly once per synchronous route, after
// the handler settled.
func (rw *Responder) flushTo(w http.ResponseWriter) {
	rw.mu.Lock()
	status, header, body := rw.status, rw.header, rw.body
	rw.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}

	if err := writeResponse(w, status, header, body); err != nil {
		rw.logs.LogFlushError(err)
	}
}

func bodyReader(v any) (io.Reader, error) {
	switch tv := v.(type) {
	case string:
		return strings.NewReader(tv), nil
	case []byte:
		return bytes.NewReader(tv), nil
	case io.Reader:
		return tv, nil
	default:
		return nil, &TypeError{val: v}
	}
}

// writeResponse copies the descriptor onto the transport's response writer.
func writeResponse(w http.ResponseWriter, status int, header http.Header, body io.Reader) error {
	dst := w.Header()
	for k, vals := range header {
		dst[k] = vals
	}

	w.WriteHeader(status)

	if body == nil {
		return nil
	}

	_, err := io.Copy(w, body)

	return err
}
