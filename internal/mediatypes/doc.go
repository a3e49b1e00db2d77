// Package mediatypes provides the accepted-extension table, MIME mapping,
// and media-class derivation shared across the store, source, and HTTP
// layers.
//
// This package exists as a dependency-free foundation that can be imported
// by other packages without creating import cycles. It contains primitive
// types, constants, and pure lookup functions with no external dependencies
// beyond the standard library.
//
// # Classes
//
// Class is the single-letter code stored alongside every tracked file:
//
//	mediatypes.ClassVideo // "v"
//	mediatypes.ClassAudio // "a"
//	mediatypes.ClassPhoto // "p"
//	mediatypes.ClassOther // "o"
//
// # Extension detection
//
// Use ClassOf to derive the class of an accepted extension:
//
//	class := mediatypes.ClassOf(".mp4") // ClassVideo
//
// # MIME types
//
// Use MimeType to get the Content-Type to serve a file as:
//
//	mime := mediatypes.MimeType(".jpg") // "image/jpeg"
//
// Extensions outside the accepted set fall back to "video/mp4", matching
// the default used when an item's type cannot be determined from its name.
package mediatypes
