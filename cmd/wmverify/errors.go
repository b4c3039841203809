package main

import "errors"

// errMismatch and errUnknown are sentinels runVerify returns so main can
// pick the right exit code without runVerify reaching into os.Exit
// itself.
var (
	errMismatch = errors.New("one or more scenarios did not match their expected outcome")
	errUnknown  = errors.New("solver returned unknown for one or more scenarios")
)
