package tesla

import "fmt"

func messageOrDefault(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

// VariantError is returned by NewCarInterface when no policy matches the
// requested variant.
type VariantError struct {
	Variant Variant
	msg     string
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s: %s", messageOrDefault(e.msg, "unsupported vehicle variant"), e.Variant)
}

// SignalError reports a signal the adapter needs that the configured signal
// database does not define.
type SignalError struct {
	Bus     int
	Message string
	Signal  string
	Err     error
}

func (e *SignalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bus %d %s.%s unavailable: %v", e.Bus, e.Message, e.Signal, e.Err)
	}
	return fmt.Sprintf("bus %d %s.%s unavailable", e.Bus, e.Message, e.Signal)
}

func (e *SignalError) Unwrap() error { return e.Err }
