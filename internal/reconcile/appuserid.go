// Package reconcile holds the payment confirmation rules shared by the
// RevenueCat webhook and client-side purchase verification.
package reconcile

import (
	"errors"
	"strings"
)

// AppUserIDSeparator joins owner and record ids. Owner ids may contain it;
// record ids never do.
const AppUserIDSeparator = "_"

var ErrMalformedAppUserID = errors.New("malformed app_user_id")

// ComposeAppUserID builds the id handed to the store at purchase time.
func ComposeAppUserID(ownerID, recordID string) string {
	return ownerID + AppUserIDSeparator + recordID
}

// ParseAppUserID splits on the last separator only, so "a_b_123" yields
// owner "a_b" and record "123".
func ParseAppUserID(appUserID string) (ownerID, recordID string, err error) {
	i := strings.LastIndex(appUserID, AppUserIDSeparator)
	if i <= 0 || i == len(appUserID)-len(AppUserIDSeparator) {
		return "", "", ErrMalformedAppUserID
	}
	return appUserID[:i], appUserID[i+len(AppUserIDSeparator):], nil
}
