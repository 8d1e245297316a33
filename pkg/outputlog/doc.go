// Package outputlog reads a growing append-only file by byte offset and
// streams it incrementally as Server-Sent Events. It holds no state beyond
// what it reads from disk on each call; callers address a log purely by its
// path and a byte offset.
package outputlog
