// Package gpak reads and writes gpak archives.
//
// An archive is a single file holding the contents of a directory tree:
//
//   - Header: magic "Gpak", format version, entry count
//   - Directory: one record per entry with sizes, payload offset,
//     compression tag, CRC-16 checksum, and path
//   - Payload: the stored bytes of every entry, concatenated in
//     directory order
//
// Entries are compressed individually with LZ4-HC when requested and when
// compression shrinks them below 75% of their original size. Checksums are
// computed over the stored bytes, so an archive can be verified without
// decompressing anything.
//
// Archives are built once with [Build], [BuildDir], or [BuildFile] and
// read with [Open] or [New]. An [Archive] is immutable; rebuilding is the
// only way to change its contents.
package gpak
