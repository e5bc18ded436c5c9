// Package preset declares named bundles of engine settings in CUE.
//
// The built-in presets are embedded; users can add or replace presets
// with their own CUE files:
//
//	presets: Classroom: {
//		description: "Move one term at a time"
//		settings: {MoveTermsOneByOne: "true", BalancingMode: "basic"}
//	}
//
// Compile checks each setting name and value against the engine's
// settings and reports errors as *CompileError with a source position.
package preset
