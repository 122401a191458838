package validation

import "time"

// DefaultLockWindow is how long an acquired lock keeps other passes out.
const DefaultLockWindow = 2 * time.Minute

// LockToken identifies one acquisition of a Lock.
type LockToken uint64

// Lock admits one validation pass at a time. A lock older than its window
// is considered stale and may be taken over, so a hung pass cannot block
// validation forever. When the pass that took over finishes while the
// previous holder is still running, the lock returns to that holder.
type Lock struct {
	acquiredAt time.Time
	window     time.Duration
	holders    []LockToken
	next       LockToken
}

// NewLock returns an unlocked lock. A non-positive window selects DefaultLockWindow.
func NewLock(window time.Duration) *Lock {
	l := &Lock{}
	l.SetWindow(window)
	return l
}

// SetWindow changes the window of the lock.
func (l *Lock) SetWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultLockWindow
	}
	l.window = window
}

// Held reports whether the lock was acquired less than a window before now.
func (l *Lock) Held(now time.Time) bool {
	return len(l.holders) > 0 && now.Sub(l.acquiredAt) < l.window
}

// TryAcquire takes the lock unless it is held. The returned token must be
// passed to Release.
func (l *Lock) TryAcquire(now time.Time) (LockToken, bool) {
	if l.Held(now) {
		return 0, false
	}
	l.next++
	l.holders = append(l.holders, l.next)
	l.acquiredAt = now
	return l.next, true
}

// Release ends the acquisition identified by token. Releasing a holder whose
// stale lock was taken over leaves the current holder in place.
func (l *Lock) Release(token LockToken, now time.Time) {
	for i, holder := range l.holders {
		if holder != token {
			continue
		}
		current := i == len(l.holders)-1
		l.holders = append(l.holders[:i], l.holders[i+1:]...)
		switch {
		case len(l.holders) == 0:
			l.acquiredAt = time.Time{}
		case current:
			l.acquiredAt = now
		}
		return
	}
}
