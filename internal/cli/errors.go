package cli

import "errors"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigFileRead     = errors.New("cannot read config file")
	errConfigInvalid      = errors.New("invalid config file")
	errUnknownHash        = errors.New("unknown hash (want maphash or siphash)")
	errInvalidSipKey      = errors.New("sip_key must be 32 hex characters")
	errNegativeCapacity   = errors.New("capacity cannot be negative")
	errSnapshotRead       = errors.New("cannot read snapshot")
	errSnapshotInvalid    = errors.New("invalid snapshot")
	errSnapshotWrite      = errors.New("cannot write snapshot")
	errUsage              = errors.New("usage")
	errUnknownCommand     = errors.New("unknown command")
	errNotFound           = errors.New("key not found")
	errBadCount           = errors.New("count must be a positive integer")
)
