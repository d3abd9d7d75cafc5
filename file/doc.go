// Package file supplies the data side of a file-transfer negotiation: the
// sources an initiator offers, their metadata, and the range arithmetic that
// turns a peer's requested offset/length into a positioned reader.
//
// # Sources
//
// A Source is an io.Reader with Metadata. Three implementations ship with the
// package:
//
//   - FileSource: a file on disk. Rangeable. MIME type detected from content,
//     checksum computed lazily on the first Metadata call.
//   - BytesSource: an in-memory buffer. Rangeable.
//   - ReaderSource: any sequential io.Reader with caller-supplied metadata.
//     Not rangeable.
//
//	src, err := file.OpenFileSource("/srv/share/report.pdf",
//	    file.WithChecksumAlgorithm(file.ChecksumSHA256))
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
// # Ranges
//
// ResolveSpan validates an optional offset/length against the file size:
//
//	span, err := file.ResolveSpan(meta.Size, &stanza.Range{Offset: stanza.Uint64(1024)})
//	// span == file.Span{Offset: 1024, Length: meta.Size - 1024}
//
// ApplySpan positions a source at the span. Rangeable sources seek; other
// sources have the prefix read and discarded so the peer still receives the
// bytes it asked for.
//
// # Checksums
//
// md5 is the protocol default. sha-256 and blake2b-256 are also available;
// ChecksumNone disables hashing for very large files.
//
// # Names
//
// File names in incoming offers come from the peer. SafeName reduces them to
// a base name before they touch the local filesystem.
package file
