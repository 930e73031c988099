package tesla

// Counter is a 4-bit rolling message counter.
type Counter uint8

// CounterOf reduces n modulo 16, negatives included.
func CounterOf(n int) Counter {
	return Counter(((n % 16) + 16) % 16)
}

func (c Counter) Next() Counter {
	return (c + 1) & 0x0F
}

// Sweep returns every counter value in ascending order.
func Sweep() []Counter {
	out := make([]Counter, 16)
	for i := range out {
		out[i] = Counter(i)
	}
	return out
}

const counterQueueCap = 32

// counterQueue buffers stock DAS_control counters between longitudinal cycles.
// When full, the oldest value is dropped.
type counterQueue struct {
	buf []Counter
}

func (q *counterQueue) Push(vals ...float64) {
	for _, v := range vals {
		q.buf = append(q.buf, CounterOf(int(v)))
	}
	if n := len(q.buf); n > counterQueueCap {
		q.buf = append(q.buf[:0], q.buf[n-counterQueueCap:]...)
	}
}

func (q *counterQueue) Len() int { return len(q.buf) }

// Drain returns the buffered counters oldest first and empties the queue.
func (q *counterQueue) Drain() []Counter {
	out := make([]Counter, len(q.buf))
	copy(out, q.buf)
	q.buf = q.buf[:0]
	return out
}
