// Package ir is the canonical JSON form of expressions and
// transformations.
//
// Values are a sealed set (String, Int, Bool, Array, Object) with no
// floats and no null, so that Marshal output is byte-for-byte stable.
// Marshal follows RFC 8785: object keys sorted by UTF-16 code units,
// no HTML escaping, NFC-normalised strings. TransformationHash is the
// content address of a solve result and is what the store and the golden
// traces compare.
package ir
