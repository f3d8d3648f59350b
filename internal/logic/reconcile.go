package logic

// Reconciler tracks the last-known remote fan flag and detects transitions.
type Reconciler struct {
	baseline  bool
	baselined bool
}

// NewReconciler creates a Reconciler with no baseline.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile takes the value from a successful poll and reports whether it is
// a transition. The first value adopted is the baseline and never a
// transition. Failed polls must not be passed in.
func (r *Reconciler) Reconcile(polled bool) bool {
	if !r.baselined {
		r.baseline = polled
		r.baselined = true
		return false
	}
	if polled == r.baseline {
		return false
	}
	r.baseline = polled
	return true
}

// IsBaselined returns whether a poll has established the baseline.
func (r *Reconciler) IsBaselined() bool {
	return r.baselined
}

// Baseline returns the last-known remote value.
func (r *Reconciler) Baseline() bool {
	return r.baseline
}
