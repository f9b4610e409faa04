package ast

import (
	"sync"
)

// Writer pool for reusing code writers; bytecode listings render one
// summary per translated instruction.
var writerPool = sync.Pool{
	New: func() interface{} {
		return NewCodeWriter(false, false)
	},
}

func acquireWriter(dot, sum bool) *CodeWriter {
	w := writerPool.Get().(*CodeWriter)
	w.Dot = dot
	w.Sum = sum
	return w
}

func releaseWriter(w *CodeWriter) {
	// Drop the text before handing the writer to the next caller
	w.Reset()
	writerPool.Put(w)
}
