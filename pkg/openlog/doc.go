// Package openlog implements the command/response protocol of an
// I2C SD-card logger (Qwiic OpenLog compatible).
package openlog

// The peripheral accepts command frames of one opcode byte followed by up to
// 31 bytes of text, and answers in chunks of at most 32 bytes. Directory
// listings and file contents are reassembled from those chunks, honoring the
// end-of-data sentinels the firmware emits:
//
//   listing: 0xFF as first byte ends the listing, 0x00 terminates a name.
//   file:    0x00 as first byte means nothing (more) to read,
//            0xFF inside a chunk marks the end of file.
//
// A Session owns the last-operation Status and the result lists callers
// navigate with cursors. All operations are synchronous and must not be
// called concurrently.
