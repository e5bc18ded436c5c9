package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is one of String, Int, Bool, Array or Object.
type Value interface {
	irValue()
}

type String string

func (String) irValue() {}

// Int is always int64. Arbitrary precision numbers are encoded as String.
type Int int64

func (Int) irValue() {}

type Bool bool

func (Bool) irValue() {}

type Array []Value

func (Array) irValue() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// Strings builds an Array of String values.
func Strings(ss ...string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// SortedKeys returns the keys in RFC 8785 order (UTF-16 code units).
// This differs from byte order for characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
