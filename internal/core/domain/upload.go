package domain

import "io"

// Upload is one file received from the client. Content type and size checks
// happen before it reaches the core.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}
