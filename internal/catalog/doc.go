// Package catalog provides the business logic for loading CSV price lists.
//
// The package has no UI dependencies. The CLI, the HTTP server and tests all
// drive the same [Engine].
//
// # Loading
//
// [Engine.Load] scans one directory:
//
//  1. [Discover] lists files whose name contains "price" and ends in ".csv"
//  2. The header row of each file is resolved with [ResolveHeaders], which maps
//     known column synonyms (товар, цена, вес, ...) to a [Role]
//  3. Every data row is parsed into a [Record]; price-per-kilogram is derived
//     as price / weight rounded half away from zero to two places
//  4. Records of a file are appended to the catalog once the whole file has
//     been read
//
// # Error Handling
//
// Only a missing or unreadable directory is fatal; it is returned as an
// [*Error] of kind [KindFileSystem]. Problems with a single file or a single
// row become [Diagnostic] values collected in the [LoadResult] and logged,
// and loading moves on. [MapDiagnostic] turns a diagnostic into a
// user-facing message with a support code:
//
//   - FILE001-FILE006: file and directory problems
//   - VAL002, VAL004, VAL007, VAL008: cell and header problems
//
// # Search
//
// [Engine.Search] does a case-insensitive substring match on the product
// name and returns matches ordered by price-per-kilogram. Ties keep catalog
// order.
package catalog
