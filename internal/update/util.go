package update

import (
	"errors"

	synchro "github.com/sandeepkv93/taskvault/internal/sync"
)

// userFacingError flattens a sync availability failure into its
// title/message form; anything else renders as-is.
func userFacingError(err error) string {
	if err == nil {
		return ""
	}
	var unavailable *synchro.UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Title + ": " + unavailable.Message
	}
	return err.Error()
}
