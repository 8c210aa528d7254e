// SPDX-License-Identifier: MPL-2.0

// Package nuget turns a compiled native library into a NuGet package.
//
// The packaging pipeline has three stages, each a plain function over
// explicit argument structs:
//
//	Spec(SpecArgs) -> *Nuspec   derive and serialize the .nuspec document
//	Pack(PackArgs) -> *Nupkg    zip the nuspec and native libraries in memory
//	Save(SaveArgs) -> *SaveResult  atomically write the package to disk
//
// The argument structs are produced from the previous stage's output by pure
// conversion functions (SpecArgsFromCargo, PackArgsFromBuild, SaveArgsFor),
// so every stage can be exercised with hand-built inputs.
//
// Raw bytes always travel in a Buf, whose fmt and slog renderings never
// include the contents.
package nuget
