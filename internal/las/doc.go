// Package las parses, validates and re-serializes CWLS Log ASCII Standard
// (LAS) well-log files for versions 1.2, 2.0 and 3.0.
//
// The package never panics or aborts on malformed input. Every failure is
// captured, classified and attached to the object it belongs to, so a caller
// always receives a [File] it can inspect, even when the file could not be
// opened at all.
//
// # Pipeline
//
// Loading a file runs a fixed sequence of stages:
//
//  1. [Split] cuts the decoded text into raw sections at "~" title lines.
//  2. [ResolveVersion] reads VERS, WRAP and DLM from the Version section
//     (always parsed with the 2.0 grammar) and picks a [Grammar].
//  3. The grammar canonicalizes section titles and drives the record parser:
//     [ParseHeader] for metadata sections, [ParseData] for data sections.
//     Curve definitions are parsed before the data so the column count is
//     known when rows are assembled.
//  4. The results are assembled into a [File] with one [Section] per
//     canonical name.
//
// Open and read failures belong to the I/O layer (see internal/lasio), which
// reports them through [NewOpenFailure] and [NewReadFailure].
//
// # Errors
//
// A File carries six error slots, one per stage: open, read, split, version,
// parse and validate. Each Section carries its own parse error listing every
// malformed line. All of them are *[Error] or *[ParseError] values that match
// the stage sentinels with errors.Is:
//
//	if errors.Is(f.VersionError(), las.ErrVersion) {
//	    // the 2.0 grammar was used as a fallback
//	}
//
// [File.Errors] lists every populated slot and section error.
//
// # Validation
//
// [Check] evaluates a File or a single Section. With criticalOnly set it
// only fails on missing required sections (Version, Well, Curves, Data) or a
// failed open/read/split/version stage; otherwise every recorded problem
// counts. Check never mutates its target; [File.Validate] is the explicit
// variant that stores the outcome in the validate slot.
package las
