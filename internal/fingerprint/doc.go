// Package fingerprint computes content-addressed identities for filter jobs.
//
// Two jobs with the same expression, column types and skip count share a
// fingerprint regardless of where their input comes from, so run history can
// group repeated runs of one job over different files.
//
// The hash input is canonical JSON: object keys sorted by UTF-16 code units,
// strings NFC-normalized, no HTML escaping, no floats and no nulls. The hash
// is SHA-256 over a versioned domain prefix, a 0x00 separator and the JSON.
package fingerprint
