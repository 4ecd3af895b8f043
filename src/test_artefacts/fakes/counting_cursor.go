package fakes

import (
	"sync/atomic"
	"supplychaintree/src/domain/entities"
	"supplychaintree/src/domain/tree"
)

// CountingCursor instrumenta um cursor: conta liberações e injeta falhas.
type CountingCursor struct {
	inner     tree.ContiguousEdgeCursor
	reads     int
	failAfter int
	failErr   error
	closeErr  error
	err       error
	closes    atomic.Int32
}

func NewCountingCursor(inner tree.ContiguousEdgeCursor) *CountingCursor {
	return &CountingCursor{inner: inner, failAfter: -1}
}

// FailingAfter faz o cursor falhar com err depois de reads leituras bem sucedidas.
func (c *CountingCursor) FailingAfter(reads int, err error) *CountingCursor {
	c.failAfter = reads
	c.failErr = err
	return c
}

func (c *CountingCursor) FailingClose(err error) *CountingCursor {
	c.closeErr = err
	return c
}

func (c *CountingCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if c.failAfter >= 0 && c.reads >= c.failAfter {
		c.err = c.failErr
		return false
	}
	c.reads++
	return c.inner.Next()
}

func (c *CountingCursor) Edge() entities.Edge {
	return c.inner.Edge()
}

func (c *CountingCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.inner.Err()
}

func (c *CountingCursor) Close() error {
	c.closes.Add(1)
	if err := c.inner.Close(); err != nil {
		return err
	}
	return c.closeErr
}

func (c *CountingCursor) Closes() int {
	return int(c.closes.Load())
}
