package console

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned by SelectEvent for ids that are not listed.
var ErrUnknownEvent = errors.New("event not in current list")

// ImportError is a proxy response outside 2xx.
type ImportError struct {
	StatusCode int
	Detail     string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed with status %d: %s", e.StatusCode, e.Detail)
}

// importMessage renders the operator-facing result of an import.
func importMessage(id string, err error) string {
	if err == nil {
		return "Imported: " + id
	}
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return "Import failed: " + importErr.Detail
	}
	return "Network error: " + err.Error()
}
