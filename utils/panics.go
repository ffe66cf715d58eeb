package utils

import "fmt"

// RecoverWithError turns a panic in the deferring function into *err.
// An error recovered from the panic is wrapped so errors.Is keeps working.
func RecoverWithError(err *error) {
	rv := recover()
	if rv == nil {
		return
	}
	if rErr, ok := rv.(error); ok {
		*err = fmt.Errorf("got panic: %w", rErr)
		return
	}
	*err = fmt.Errorf("got panic: %v", rv)
}
