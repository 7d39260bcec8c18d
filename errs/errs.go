// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package errs implements the classified errors raised by the engine
package errs

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// Class classifies an error for the recovery policy of the cycle driver
type Class int

const (
	Config               Class = iota + 1 // fatal: malformed input, incompatible layouts, cycles, unknown names
	PhysicalBounds                        // recoverable by the driver: shrink the step and retry
	LocalConvergence                      // recoverable per entity: fallback value is used
	NumericalSingularity                  // step failure: preconditioner could not be applied
)

// String returns the name of the class
func (c Class) String() string {
	switch c {
	case Config:
		return "ConfigError"
	case PhysicalBounds:
		return "PhysicalBoundsViolation"
	case LocalConvergence:
		return "LocalConvergenceFailure"
	case NumericalSingularity:
		return "NumericalSingularity"
	}
	return "UnknownError"
}

// Fatal tells whether errors of this class must terminate the run
func (c Class) Fatal() bool {
	return c == Config
}

// Error holds a classified error
type Error struct {
	Class Class  // classification
	Key   string // offending field key, parameter or entity; may be empty
	Msg   string // message
	Err   error  // wrapped error; may be nil
}

// Error implements the error interface
func (o *Error) Error() string {
	s := io.Sf("%v: %s", o.Class, o.Msg)
	if o.Key != "" {
		s = io.Sf("%v [%s]: %s", o.Class, o.Key, o.Msg)
	}
	if o.Err != nil {
		s += ":\n" + o.Err.Error()
	}
	return s
}

// Unwrap returns the wrapped error
func (o *Error) Unwrap() error { return o.Err }

// Is matches targets of the same class (and key, if the target has one)
func (o *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Key != "" && t.Key != o.Key {
		return false
	}
	return o.Class == t.Class
}

// New returns a new classified error
func New(class Class, key, msg string, prm ...interface{}) *Error {
	return &Error{Class: class, Key: key, Msg: io.Sf(msg, prm...)}
}

// Wrap wraps err into a classified error
func Wrap(class Class, key string, err error, msg string, prm ...interface{}) *Error {
	return &Error{Class: class, Key: key, Msg: io.Sf(msg, prm...), Err: err}
}

// Configf returns a ConfigError
func Configf(key, msg string, prm ...interface{}) *Error {
	return New(Config, key, msg, prm...)
}

// Boundsf returns a PhysicalBoundsViolation
func Boundsf(key, msg string, prm ...interface{}) *Error {
	return New(PhysicalBounds, key, msg, prm...)
}

// Convergencef returns a LocalConvergenceFailure
func Convergencef(key, msg string, prm ...interface{}) *Error {
	return New(LocalConvergence, key, msg, prm...)
}

// Singularf returns a NumericalSingularity
func Singularf(key, msg string, prm ...interface{}) *Error {
	return New(NumericalSingularity, key, msg, prm...)
}

// Is tells whether err (or any error it wraps) belongs to class
func Is(err error, class Class) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Class == class {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}

// ClassOf returns the class of the outermost classified error in err; zero if none
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return 0
}
