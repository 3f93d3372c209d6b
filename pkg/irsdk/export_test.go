package irsdk

// SetOnCopied lets external tests interleave a producer write with a read.
func (c *Client) SetOnCopied(f func()) {
	c.onCopied = f
}
