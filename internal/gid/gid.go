// Package gid gives every goroutine a stable numeric identity, standing in
// for the OS thread handles the bridge's design assumes. It is the
// completed form of the goroutineid stub carried by the wider utility
// collection this module grew out of: that package shipped only a go.mod,
// so the extraction here is the first real implementation of it.
package gid

import (
	"runtime"
	"sync"
)

// ID identifies a single goroutine for the lifetime of that goroutine.
// Two goroutines never share an ID; a goroutine's ID never changes.
type ID = uint64

// buf is reused across Current calls via a pool: runtime.Stack writes a
// textual trace and we only ever need its first line.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 64)
		return &b
	},
}

// Current returns the calling goroutine's ID.
//
// There is no public runtime API for this, so we parse it out of the
// header line of a single-goroutine stack trace ("goroutine 123 [running]:").
// The registry, the bridge's mailboxes and the sticky workers all key on
// the ID it returns.
func Current() ID {
	bp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	buf := *bp

	n := runtime.Stack(buf, false)
	var id ID
	for i := len("goroutine "); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + ID(c-'0')
	}
	return id
}
