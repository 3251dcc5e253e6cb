// Command token issues cashier bearer tokens signed with the configured
// JWT secret. Useful for tills and local testing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/config"
)

func main() {
	var (
		cashierID string
		name      string
		roles     string
	)
	flag.StringVar(&cashierID, "id", "", "Cashier ID (a UUID is generated when empty)")
	flag.StringVar(&name, "name", "", "Cashier display name")
	flag.StringVar(&roles, "roles", auth.RoleCashier, "Comma separated roles (cashier, supervisor)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret is not configured")
		os.Exit(1)
	}

	token, err := auth.NewJWTService(cfg.JWT).IssueCashierToken(cashierID, name, splitRoles(roles)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(token); err != nil {
		os.Exit(1)
	}
}

func splitRoles(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
