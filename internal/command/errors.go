package command

import "errors"

// ErrRejected marks a command that was refused and already answered the
// interaction (failed permission check, invalid option). The dispatcher must
// not send the generic error reply for it.
var ErrRejected = errors.New("command rejected")
