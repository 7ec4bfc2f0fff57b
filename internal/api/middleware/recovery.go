package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/dutyledger/internal/api/apierr"
	"github.com/mcoot/dutyledger/internal/middleware"
	"github.com/mcoot/dutyledger/internal/services/processlog"
)

// Recovery turns handler panics into INTERNAL_ERROR responses. When a
// process log is given, the panic is also recorded there as an ERROR entry.
func Recovery(logger *slog.Logger, processLog *processlog.Service) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, err error) {
		if processLog != nil {
			processLog.Record(r.Context(), r.URL.Path, r.Method+" "+r.URL.Path, err)
		}
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
