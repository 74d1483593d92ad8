package http

import (
	"net/http"

	"github.com/jcastell/obratrack/internal/actor"
	"github.com/jcastell/obratrack/internal/permission"
)

// RequireFolder gates a route subtree on the permission matrix: read methods
// need at least read-only access on the folder, everything else read-write.
func RequireFolder(m permission.Matrix, folder permission.Folder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := actor.FromContext(r.Context())
			if !ok {
				http.Error(w, "missing actor", http.StatusUnauthorized)
				return
			}

			role := permission.Role(a.Role)

			allowed := m.CanWrite(role, folder)
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				allowed = m.CanRead(role, folder)
			}

			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
