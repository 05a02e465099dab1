// Package mmap maps imprint files read-only.
//
// A persisted imprint index is loaded by mapping its file, checking the
// header and decoding each section before the mapping is closed:
//
//	m, err := mmap.Open(path)
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AdviceSequential)
//	sections, err := m.Sections(imprints.HeaderSize, binsSize, statsSize)
//
// Unix platforms use mmap(2) and madvise(2). Windows uses
// CreateFileMapping and MapViewOfFile and ignores advice.
//
// A Mapping may be read concurrently. Slices obtained from it must not be
// used after Close.
package mmap
