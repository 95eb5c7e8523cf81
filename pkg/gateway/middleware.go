package gateway

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jzx17/goexecutor/pkg/types"
)

// Middleware runs the wrapped handler on the executor. The handler writes
// into a buffer that is copied to the client once it returns. Saturation,
// shutdown and timeouts answer 503, a failing or panicking handler 500.
// A client that disconnects gets nothing.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		buf := newBufferedResponse()

		detached := detachRoute(r)
		task := &requestTask{id: reqID, run: func() {
			next.ServeHTTP(buf, detached)
		}}

		_, err := g.Do(r.Context(), task)
		if err == nil {
			buf.copyTo(w)
			return
		}

		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}

		switch {
		case errors.Is(err, context.Canceled):
			g.logger.Debug("client went away", fields...)
		case types.IsRejected(err):
			g.logger.Warn("request rejected", fields...)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "service busy", http.StatusServiceUnavailable)
		case errors.Is(err, types.ErrShutdown), errors.Is(err, types.ErrNotStarted):
			g.logger.Warn("request refused", fields...)
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, types.ErrTimeout):
			g.logger.Warn("request timed out", fields...)
			http.Error(w, "request timed out", http.StatusServiceUnavailable)
		default:
			g.logger.Error("request failed", fields...)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

// detachRoute gives the handler its own chi routing context. chi recycles
// the original once ServeHTTP returns, and a timed out handler outlives it.
func detachRoute(r *http.Request) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r
	}

	own := chi.NewRouteContext()
	own.Routes = rctx.Routes
	own.RoutePath = rctx.RoutePath
	own.RouteMethod = rctx.RouteMethod
	own.URLParams.Keys = append(own.URLParams.Keys, rctx.URLParams.Keys...)
	own.URLParams.Values = append(own.URLParams.Values, rctx.URLParams.Values...)
	own.RoutePatterns = append(own.RoutePatterns, rctx.RoutePatterns...)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, own))
}

// requestTask adapts a handler invocation to types.Task. Its ID is the chi
// request ID when one is set.
type requestTask struct {
	id  string
	run func()
}

func (t *requestTask) Execute(ctx context.Context) (any, error) {
	t.run()
	return nil, nil
}

func (t *requestTask) ID() string {
	return t.id
}

// bufferedResponse collects a handler's response off the connection
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) copyTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}

	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(b.body.Bytes())
}
