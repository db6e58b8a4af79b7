package channel

import "errors"

// ErrChannelDisabled is returned (inside a transient Outcome) when Send is
// called on a channel whose configuration is absent. The dispatcher skips
// disabled channels, so seeing this error means a wiring bug upstream.
var ErrChannelDisabled = errors.New("channel is disabled")
