// Package router adapts plain request/response domain handlers to HTTP.
// Handlers never see transport types: requests are decoded from the query
// string or JSON body into plain structs and responses are wrapped in a
// uniform JSON envelope.
package router

import (
	"context"
	"net/http"

	"github.com/rondomundi/backend/pkg/logger"
	"github.com/rondomundi/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. Returning an error stops the
// request and sends the error envelope.
type MiddlewareFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// CloserFunc runs after the response is written, with the handler error if
// any.
type CloserFunc func(ctx context.Context, r *http.Request, err error)

type Router struct {
	mux    *http.ServeMux
	logger logger.Logger

	befores []MiddlewareFunc
	afters  []CloserFunc
}

func New(l logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: l,
	}
}

func (r *Router) Before(mw MiddlewareFunc) {
	r.befores = append(r.befores, mw)
}

func (r *Router) After(c CloserFunc) {
	r.afters = append(r.afters, c)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	handle(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	handle(r, http.MethodPost, pattern, handler)
}

func handle[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := xcontext.WithLogger(req.Context(), r.logger)

		err := func() error {
			if req.Method != method {
				return errMethodNotAllowed
			}

			for _, mw := range r.befores {
				if err := mw(ctx, w, req); err != nil {
					return err
				}
			}

			var body Request
			if err := decodeRequest(req, method, &body); err != nil {
				return err
			}

			resp, err := handler(ctx, &body)
			if err != nil {
				return err
			}

			return writeJson(w, newResponse(resp))
		}()

		if err != nil {
			if werr := writeJson(w, newErrorResponse(err)); werr != nil {
				xcontext.Logger(ctx).Errorf("Cannot write the response: %v", werr)
			}
		}

		for _, closer := range r.afters {
			closer(ctx, req, err)
		}
	})
}
