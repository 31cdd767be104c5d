package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"rekaloka/internal/response"
	"rekaloka/internal/services"

	"go.uber.org/zap"
)

// Recovery converts a panic into a 500 envelope and logs the stack
func Recovery(builder *response.Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				GetRequestLogger(r.Context()).Error("Panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				err := services.NewInternalError("unexpected server error").
					WithCause(fmt.Errorf("panic: %v", rec))
				builder.WriteError(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
