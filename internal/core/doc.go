// Package core provides the business logic around the LAS parser: loading
// uploaded files, checking them, storing them and exporting them again.
//
// It is independent of any transport. The HTTP handlers in internal/web and
// the CLI's ingest and watch commands both drive the same [Service].
//
// # Ingest
//
// [Service.Ingest] decodes the upload (see internal/lasio), parses it,
// runs the critical check and, unless the file is rejected, stores a
// summary, the decoded text and the data rows:
//
//	svc := core.NewService(store.NewMemory(), core.NewIngestLimiter(4, 30*time.Second), opts)
//	res, err := svc.Ingest(ctx, "well.las", r)
//
// Concurrent ingests are bounded by an [IngestLimiter]. Stored files are
// parsed again from their text on every read, so views always reflect the
// current parser.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. LAS
// stage errors get the LAS001-LAS007 codes, file problems FILE00x, admission
// and cancellation UPL00x, and database connectivity DB00x.
package core
