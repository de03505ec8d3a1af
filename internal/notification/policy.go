package notification

// ShouldNotifyOnFinish reports whether a finished build deserves an e-mail.
// Only failures do.
func ShouldNotifyOnFinish(b Build) bool {
	return b != nil && b.Failed()
}

// ShouldNotifyOnFix always returns true: the fixed event is only raised
// after the caller has seen a failing build turn green.
func ShouldNotifyOnFix(_, _ Build) bool {
	return true
}

// shouldNotify applies the per-kind policy to e.
func shouldNotify(e Event) bool {
	switch ev := e.(type) {
	case Finished:
		return ShouldNotifyOnFinish(ev.Build)
	case Fixed:
		return ShouldNotifyOnFix(ev.Build, ev.Previous)
	}
	return false
}
