package util

// Semaphore is a counting semaphore used to bound concurrent work.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore permitting n concurrent holders.
func NewSemaphore(n int) Semaphore {
	if n < 1 {
		n = 1
	}
	return make(Semaphore, n)
}

// Acquire takes a slot, blocking until one is free.
func (s Semaphore) Acquire() {
	s <- struct{}{}
}

// Release frees a slot.
func (s Semaphore) Release() {
	<-s
}
