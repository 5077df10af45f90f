package upload

import "io"

// countingReader reports cumulative bytes read to a ProgressFunc.
type countingReader struct {
	r        io.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		c.progress(c.sent, c.total)
	}
	return n, err
}
