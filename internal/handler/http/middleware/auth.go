package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/jwt"
)

type principalKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller in the request context. It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := jwt.PrincipalFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the caller stored by AuthRequired.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(user.Principal)
	return principal, ok
}
