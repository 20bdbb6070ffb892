package main

import "C"
import (
	"unsafe"

	"github.com/rcm-dev/rcm/internal/rcm"
)

//export rcm_run
func rcm_run(argc C.int, argv **C.char) C.int {
	arglen := int(argc)
	if arglen < 0 || argv == nil {
		arglen = 0
	}
	args := make([]string, arglen)
	for i, arg := range unsafe.Slice(argv, arglen) {
		if arg != nil {
			args[i] = C.GoString(arg)
		}
	}
	return C.int(rcm.Run(args))
}

// Allocated once and intentionally never freed; callers borrow it.
var cVersion *C.char

//export rcm_version
func rcm_version() *C.char {
	if cVersion == nil {
		cVersion = C.CString(rcm.Version())
	}
	return cVersion
}
