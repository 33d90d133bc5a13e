// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"
)

// message carried by every contract violation panic
const abortMessage = "abort, see last messages in log file"

// the PANIC channel, nil until Initialise
var log *logger.L

// Initialise - open the channel used for the last messages before a
// panic
func Initialise() error {
	if nil != log {
		return ErrAlreadyInitialised
	}
	log = logger.New("PANIC")
	if nil == log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush the channel
func Finalise() {
	if nil != log {
		log.Flush()
	}
}

// Panicf - log a contract violation with the caller's position and
// abort
func Panicf(format string, arguments ...interface{}) {
	if _, file, line, ok := runtime.Caller(1); ok {
		a := make([]interface{}, 2, 2+len(arguments))
		a[0] = file
		a[1] = line
		a = append(a, arguments...)
		critical("(%q:%d) "+format, a...)
	} else {
		critical(format, arguments...)
	}
	abort(abortMessage)
}

// PanicWithError - abort because an operation failed
func PanicWithError(message string, err error) {
	abort(fmt.Sprintf("%s failed with error: %v", message, err))
}

// PanicIfError - abort only if err is set
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	PanicWithError(message, err)
}

func abort(message string) {
	critical("%s", message)
	time.Sleep(100 * time.Millisecond) // let the log writer catch up
	panic(message)
}

// falls back to stdout when the channel is not open
func critical(format string, arguments ...interface{}) {
	if nil == log {
		fmt.Printf("*** "+format+"\n", arguments...)
	} else {
		log.Criticalf(format, arguments...)
		log.Flush()
	}
}
