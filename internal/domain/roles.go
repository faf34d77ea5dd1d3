package domain

import "strings"

// Role is a free-form classification; authorization decisions happen elsewhere.
type Role string

const (
	// Admin accounts provision other accounts
	RoleAdmin Role = "admin"
	// Agents work tickets
	RoleAgent Role = "agent"
)

// NormalizeRole trims surrounding whitespace. Unknown roles are kept as-is.
func NormalizeRole(r string) string {
	return strings.TrimSpace(r)
}
