package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aledsdavies/texstack/core/errs"
)

// FormatError writes err for the terminal. Structured errors show their
// type and context on separate lines.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var e *errs.Error
	if !errors.As(err, &e) {
		_, _ = fmt.Fprintf(w, "%s%s\n", paint("Error: ", styleFlash, useColor), err.Error())
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", paint("Error: ", styleFlash, useColor), e.Message)
	_, _ = fmt.Fprintf(w, "%s\n", paint("  type: "+e.Type, styleSecondary, useColor))
	if e.Cause != nil {
		_, _ = fmt.Fprintf(w, "%s\n", paint("  cause: "+e.Cause.Error(), styleSecondary, useColor))
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s\n", paint(fmt.Sprintf("  %s: %v", k, e.Context[k]), styleSecondary, useColor))
	}
}
