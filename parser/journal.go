package parser

// entry is a single undoable write: either a variable write (rec != nil) or an
// append to a global accumulator
type entry struct {
	rec     *Record
	name    string
	prev    interface{}
	existed bool

	prevLen int
}

// journal records every write made during a parse so that abandoned attempts
// can be undone.  It owns the global accumulators.
type journal struct {
	entries []entry
	globals map[string][]TreeNode
}

func newJournal(globals []string) *journal {
	j := &journal{globals: make(map[string][]TreeNode, len(globals))}
	for _, name := range globals {
		j.globals[name] = nil
	}

	return j
}

// mark returns a position that can later be rolled back to
func (j *journal) mark() int {
	return len(j.entries)
}

// set writes a record variable
func (j *journal) set(rec *Record, name string, value interface{}) {
	prev, existed := rec.values[name]
	j.entries = append(j.entries, entry{rec: rec, name: name, prev: prev, existed: existed})
	rec.values[name] = value
}

// appendGlobal appends a value to a global accumulator
func (j *journal) appendGlobal(name string, value TreeNode) {
	j.entries = append(j.entries, entry{name: name, prevLen: len(j.globals[name])})
	j.globals[name] = append(j.globals[name], value)
}

// rollback undoes every write made since the mark in reverse order
func (j *journal) rollback(mark int) {
	for i := len(j.entries) - 1; i >= mark; i-- {
		e := j.entries[i]

		if e.rec == nil {
			j.globals[e.name] = j.globals[e.name][:e.prevLen]
		} else if e.existed {
			e.rec.values[e.name] = e.prev
		} else {
			delete(e.rec.values, e.name)
		}

		// release references held by the undone entry
		j.entries[i] = entry{}
	}

	j.entries = j.entries[:mark]
}
