// Package sanitizer normalizes guest and inventory input before validation
// and storage.
//
// All functions are idempotent - applying them twice produces the same
// result - and handle invalid input by returning empty values rather than
// errors.
//
// Normalization includes:
//   - Names and hotel names: collapse whitespace, trim edges
//   - Emails: trim and lowercase
//   - Room numbers: trim, uppercase ("12b" becomes "12B")
//   - Amenity lists: normalize entries, drop empties and duplicates
package sanitizer
