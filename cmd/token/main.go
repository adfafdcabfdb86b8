// Command token mints access tokens for kiosks and operators.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/config"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "", "user or kiosk id stored in the user_id claim")
	role := flag.String("role", string(user.RoleKiosk), "kiosk, hr or approver")
	expiration := flag.String("exp", "", "token lifetime, defaults to JWT_ACCESS_EXPIRATION_TIME")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-subject is required")
		os.Exit(2)
	}
	r := user.Role(*role)
	if !r.IsValid() {
		fmt.Fprintln(os.Stderr, user.ErrInvalidRole)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	lifetime := cfg.JWT.AccessExpiration
	if *expiration != "" {
		lifetime = *expiration
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, lifetime).GenerateAccessToken(*subject, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}
