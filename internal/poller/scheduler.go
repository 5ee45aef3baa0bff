package poller

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc runs fn once after d. time.AfterFunc satisfies it through realAfterFunc.
type AfterFunc func(d time.Duration, fn func()) Timer

func realAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
