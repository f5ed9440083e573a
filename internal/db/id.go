package db

import gonanoid "github.com/matoous/go-nanoid/v2"

const idSize = 16

// newID generates an opaque row identifier.
func newID() string {
	return gonanoid.Must(idSize)
}
