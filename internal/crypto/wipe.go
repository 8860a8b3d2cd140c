package crypto

import "github.com/awnumar/memguard"

// Wipe overwrites every slice with zeroes. nil slices are skipped.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if b != nil {
			memguard.WipeBytes(b)
		}
	}
}
