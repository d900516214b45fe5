package report

// Resource id to name table supplied by the surrounding tool.  The parser
// carries the table for its callers; header decoding never consults it.
type ResourceNames map[uint32]string

func (names ResourceNames) Lookup(id uint32) (string, bool) {
	name, ok := names[id]
	return name, ok
}
