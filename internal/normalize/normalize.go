// Package normalize canonicalizes user-supplied identifiers before they
// are stored or compared.
package normalize

import "strings"

// Email trims surrounding whitespace and lower-cases an address. Every
// address the application persists goes through this first: the users,
// pending_users, confirm_codes, ban_list and subscriptions collections
// all key on the normalized form, and the per-account upload folder name
// is an md5 of it, so two spellings of one address must never diverge.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
