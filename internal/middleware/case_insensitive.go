package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitiveMiddleware lowercases script paths.
// PHP hosted on Windows serves /API/Users.php and /api/users.php alike, so
// the simulator does too. Other paths are left alone.
func CaseInsensitiveMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(strings.ToLower(r.URL.Path), ".php") {
			r.URL.Path = strings.ToLower(r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
