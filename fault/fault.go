// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type IntegrityError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised     = ExistsError("already initialised")
	ErrBackendNotOpen         = ProcessError("backend is not open")
	ErrDatabaseVersion        = RecordError("incompatible database version")
	ErrDigestLength           = LengthError("digest length is invalid")
	ErrHashMismatch           = IntegrityError("node data does not match its hash")
	ErrImmutableTree          = InvalidError("tree is immutable")
	ErrInvalidBackend         = InvalidError("invalid storage backend")
	ErrInvalidCloseInterval   = InvalidError("invalid close interval")
	ErrInvalidConfiguration   = InvalidError("configuration file must return a table")
	ErrInvalidCount           = InvalidError("invalid count")
	ErrInvalidDigest          = InvalidError("invalid digest")
	ErrInvalidEntry           = RecordError("invalid ledger entry")
	ErrInvalidLedgerHeader    = RecordError("invalid ledger header")
	ErrInvalidLoggerChannel   = InvalidError("invalid logger channel")
	ErrInvalidNodeData        = RecordError("invalid node data")
	ErrInvalidNodeID          = InvalidError("invalid node id")
	ErrInvalidNodeType        = RecordError("invalid node type")
	ErrInvalidStructPointer   = InvalidError("invalid struct pointer")
	ErrInvalidSyncPayload     = RecordError("invalid sync payload")
	ErrInvalidTransactionBlob = RecordError("invalid transaction blob")
	ErrLedgerHeaderLength     = LengthError("ledger header length is invalid")
	ErrLedgerNotFound         = NotFoundError("ledger not found")
	ErrMissingRoot            = NotFoundError("tree root is missing")
	ErrNodeDepthExceeded      = InvalidError("node depth exceeds key length")
	ErrNodeNotFound           = IntegrityError("node not found in store")
	ErrNotLedgerBase          = InvalidError("view is not based on a ledger")
	ErrNotSyncing             = InvalidError("tree is not synchronising")
	ErrNotTransactionView     = InvalidError("view cannot record transactions")
	ErrReadOnlyBackend        = ProcessError("backend is read only")
	ErrRootAlreadyPresent     = ExistsError("tree root is already present")
	ErrUnexpectedNode         = InvalidError("unexpected node")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string    { return string(e) }
func (e IntegrityError) Error() string { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e LengthError) Error() string    { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e ProcessError) Error() string   { return string(e) }
func (e RecordError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool    { _, ok := e.(ExistsError); return ok }
func IsErrIntegrity(e error) bool { _, ok := e.(IntegrityError); return ok }
func IsErrInvalid(e error) bool   { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool    { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool  { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool   { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool    { _, ok := e.(RecordError); return ok }
