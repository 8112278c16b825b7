// Package parse extracts raw records from semi-structured document files.
//
// Two parsers are provided:
//   - Tokenizer streams a file in fixed windows and extracts top-level
//     JSON objects by brace-depth matching, without buffering the whole
//     file in memory. Inputs up to hundreds of megabytes are supported.
//   - ParseEager parses smaller in-memory inputs (a JSON array or
//     newline-delimited objects) when streaming is unnecessary.
//
// Malformed spans are never fatal: each candidate that fails to parse,
// or parses to something other than a mapping, is counted as skipped and
// processing continues. The Loader type drives both parsers over a list
// of source files and reports a per-file summary.
package parse
