package chainmap

import "unsafe"

// unsafeConvertSlice reinterprets s as []Dest. Dest and Src must have the
// same layout; benchmarks use it to build keys of a type parameter.
//
//go:nocheckptr
func unsafeConvertSlice[Dest any, Src any](s []Src) []Dest {
	return unsafe.Slice((*Dest)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}
