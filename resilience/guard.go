package resilience

// Guard decides whether a call may be attempted and learns from its outcome.
// Implementations must be safe for concurrent use: every in-flight request
// of a client reports to the same Guard.
type Guard interface {
	// Allow reports whether a call may be dispatched now.
	Allow() bool
	// OnSuccess records a call that reached the remote end.
	OnSuccess()
	// OnFailure records a call that failed at the transport level. Calls
	// cancelled by their caller are not reported.
	OnFailure()
}

// NoopGuard admits every call and ignores outcomes.
type NoopGuard struct{}

var _ Guard = NoopGuard{}

func (NoopGuard) Allow() bool { return true }
func (NoopGuard) OnSuccess()  {}
func (NoopGuard) OnFailure()  {}

// Releaser is implemented by guards that hand out limited permits. Release
// returns the permit of an admitted call that its caller abandoned before
// any outcome was known; the call counts as neither success nor failure.
type Releaser interface {
	Release()
}

// ReleaseGuard calls g.Release when g implements Releaser.
func ReleaseGuard(g Guard) {
	if r, ok := g.(Releaser); ok {
		r.Release()
	}
}
