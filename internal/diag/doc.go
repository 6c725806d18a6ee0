// Package diag defines the diagnostics produced by document
// validation: severities, stable APF codes, locations, and the ordered
// list a validation run returns.
//
// Codes are stable across releases so that tooling can filter and
// suppress findings; messages are free to improve. Only ERROR entries
// block a document from committing. WARN and INFO entries ride along
// with successful results.
package diag
