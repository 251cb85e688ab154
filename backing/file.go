package backing

import (
	"os"

	"github.com/chunkfile/chunkfile/internal/chunkerr"
)

// OpenFile opens path as a Store. writable selects between read-write
// (creating the file if it doesn't exist) and strictly read-only.
func OpenFile(path string, writable bool) (*os.File, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, chunkerr.WrapKind(err, chunkerr.KindIO, "open backing file")
	}
	return f, nil
}
