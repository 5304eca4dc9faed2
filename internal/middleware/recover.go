package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a 500 failure envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}

			zap.L().Error("handler panic",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()),
			)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error", fmt.Sprint(p))
		}()

		next.ServeHTTP(w, r)
	})
}
