package mintflow

import (
	"errors"

	"candymint/candyguard"
)

// Configuration errors, fatal to the current mint action.
var (
	// ErrNoGuard means no guard configuration exists at all.
	ErrNoGuard = errors.New("no guards defined, minting not possible")
	// ErrAllowlistMissing means a group configures an allowList guard but
	// no membership set was provided for its label.
	ErrAllowlistMissing = errors.New("allowlist for group not configured")
	// ErrNoTransactionsSent means every submission in a request failed.
	ErrNoTransactionsSent = errors.New("no transactions were sent successfully")
)

// ChooseGuard resolves the selected group label to its guard set. An
// unknown label falls back to the default guard set.
func ChooseGuard(label string, guard *candyguard.CandyGuard) (string, *candyguard.GuardSet, error) {
	if guard == nil {
		return "", nil, ErrNoGuard
	}
	for i := range guard.Groups {
		if guard.Groups[i].Label == label {
			return label, &guard.Groups[i].Guards, nil
		}
	}
	return candyguard.DefaultGroupLabel, &guard.Guards, nil
}
