package registry

// Waitlist is a FIFO queue of student IDs backed by a ring buffer, with a
// membership set kept in sync for O(1) duplicate checks.
type Waitlist struct {
	buf     []string
	head    int
	size    int
	members map[string]struct{}
}

// NewWaitlist returns an empty waitlist.
func NewWaitlist() *Waitlist {
	return &Waitlist{members: make(map[string]struct{})}
}

// Len returns the number of waiting students.
func (w *Waitlist) Len() int {
	return w.size
}

// Contains reports whether id is waiting.
func (w *Waitlist) Contains(id string) bool {
	_, ok := w.members[id]
	return ok
}

// Push appends id to the tail. Empty and duplicate IDs are refused.
func (w *Waitlist) Push(id string) bool {
	if id == "" || w.Contains(id) {
		return false
	}
	if w.size == len(w.buf) {
		w.grow()
	}
	w.buf[(w.head+w.size)%len(w.buf)] = id
	w.size++
	w.members[id] = struct{}{}
	return true
}

// Pop removes and returns the head of the queue.
func (w *Waitlist) Pop() (string, bool) {
	if w.size == 0 {
		return "", false
	}
	id := w.buf[w.head]
	w.buf[w.head] = ""
	w.head = (w.head + 1) % len(w.buf)
	w.size--
	delete(w.members, id)
	return id, true
}

// Remove deletes id from anywhere in the queue, keeping the order of the others.
func (w *Waitlist) Remove(id string) bool {
	if !w.Contains(id) {
		return false
	}
	items := w.Items()
	w.buf = make([]string, len(w.buf))
	w.head, w.size = 0, 0
	delete(w.members, id)
	for _, item := range items {
		if item == id {
			continue
		}
		w.buf[w.size] = item
		w.size++
	}
	return true
}

// Position returns the 1-based place of id in the queue, or 0 when absent.
func (w *Waitlist) Position(id string) int {
	if !w.Contains(id) {
		return 0
	}
	for i := 0; i < w.size; i++ {
		if w.buf[(w.head+i)%len(w.buf)] == id {
			return i + 1
		}
	}
	return 0
}

// Items returns the queue in arrival order.
func (w *Waitlist) Items() []string {
	items := make([]string, 0, w.size)
	for i := 0; i < w.size; i++ {
		items = append(items, w.buf[(w.head+i)%len(w.buf)])
	}
	return items
}

func (w *Waitlist) grow() {
	capacity := len(w.buf) * 2
	if capacity < 4 {
		capacity = 4
	}
	next := make([]string, capacity)
	copy(next, w.Items())
	w.buf = next
	w.head = 0
}
