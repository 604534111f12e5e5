package isolate

// Outcome is the tagged result of one probe attempt. It is the only
// information that crosses the isolation boundary.
type Outcome struct {
	OK    bool
	Cause string
}

// Err returns nil for a successful outcome and a *ProbeError otherwise.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	return &ProbeError{Cause: o.Cause}
}

// ProbeError reports a failed probe attempt. The search layer never
// interprets the cause; it is retained for operator-visible logging only.
type ProbeError struct {
	Cause string
}

func (e *ProbeError) Error() string {
	return "probe failed: " + e.Cause
}
