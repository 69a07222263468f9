package runtime

import (
	"sync/atomic"

	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// indexHolder boxes the interface so it can live behind an atomic.Pointer
type indexHolder struct {
	index driven.VectorIndex
}

// atomicIndex is a lock-free swappable VectorIndex reference
type atomicIndex struct {
	p atomic.Pointer[indexHolder]
}

func (a *atomicIndex) Load() driven.VectorIndex {
	h := a.p.Load()
	if h == nil {
		return nil
	}
	return h.index
}

func (a *atomicIndex) Store(idx driven.VectorIndex) {
	a.p.Store(&indexHolder{index: idx})
}
