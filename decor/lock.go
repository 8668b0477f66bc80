package decor

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ownedMutex is a mutex that remembers the goroutine holding it, so a holder
// that tries to lock again gets ErrNestedOverride instead of blocking forever.
type ownedMutex struct {
	mu    sync.Mutex
	owner atomic.Uint64
}

// lock acquires m, or returns ErrNestedOverride when the calling goroutine
// already holds it.
func (m *ownedMutex) lock() error {
	id := goroutineID()
	// owner only ever equals id while this goroutine holds m.
	if id != 0 && m.owner.Load() == id {
		return ErrNestedOverride
	}
	m.mu.Lock()
	m.owner.Store(id)
	return nil
}

func (m *ownedMutex) unlock() {
	m.owner.Store(0)
	m.mu.Unlock()
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID parses the current goroutine id from the runtime stack header
// ("goroutine 42 [running]:"). It returns 0 if the header cannot be parsed.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
