// Package core provides the business logic for player roster imports.
//
// The package turns an uploaded spreadsheet into validated player records
// and produces the template spreadsheet organizers fill in. It has no UI or
// database dependencies: persistence is reached through the [PlayerStore]
// interface, so web handlers, the CLI and tests all use the same code.
//
// # Import
//
// [Parse] reads the whole file, decodes the first worksheet and maps each
// data row onto a [PlayerRecord]:
//
//  1. Each canonical field is looked up through its alias list in
//     [PlayerFieldSpecs], first truthy cell wins
//  2. Values are converted to trimmed text
//  3. full_name, email and group_name must be non-empty
//  4. email must look like local@domain.tld
//  5. verified is true only for the text "true" (any case)
//
// The first invalid row aborts the whole file; no partial result is ever
// returned. Failures wrap one of [ErrFileRead], [ErrDecode],
// [ErrMissingRequiredField] or [ErrInvalidEmailFormat].
//
// # Template
//
// [GenerateTemplate] writes a single "Players" sheet with the headers in
// [TemplateHeaders] and two example rows. Feeding it back to [Parse] yields
// exactly those two players.
//
// # Service
//
// [Service] adds upload size limits, a concurrency cap ([ImportLimiter]),
// structured logging and metrics around the parser, and hands validated
// records to the configured [PlayerStore] in one batch.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference: FILE, VAL, GRP, DB, IMP.
package core
