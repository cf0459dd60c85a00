package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bodgit/rq"
	"github.com/bodgit/rq/mask"
	"github.com/urfave/cli/v2"
)

// highlight renders msg followed by input with a caret line under the
// offending span
func highlight(msg, input string, offset, length int, help string) string {
	if length < 1 {
		length = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n  %s\n  %s%s", msg, input, strings.Repeat(" ", offset), strings.Repeat("^", length))
	if help != "" {
		fmt.Fprintf(&b, "\n\nhelp: %s", help)
	}
	return b.String()
}

func describe(err error) string {
	var merr *mask.Error
	var eerr *rq.ExtensionError

	switch {
	case errors.As(err, &merr):
		return highlight(merr.Err.Error(), merr.Input, merr.Offset, merr.Length, "")
	case errors.As(err, &eerr):
		offset, length := eerr.Span()
		return highlight(eerr.Error(), eerr.Path, offset, length, eerr.Advice)
	default:
		return err.Error()
	}
}

func exit(err error) error {
	return cli.Exit(describe(err), 1)
}
