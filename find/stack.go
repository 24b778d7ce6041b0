package find

// frameStack is the LIFO of directory frames the driver descends through.
// The top frame is always the directory currently being enumerated. A
// settable destructor runs for every element still held when the stack is
// destroyed, so an open directory handle cannot outlive the walk.
type frameStack struct {
	frames     []*dirFrame
	destructor func(*dirFrame)
}

func newFrameStack() *frameStack {
	return &frameStack{}
}

// setDestructor registers the hook destroy invokes on each remaining
// element.
func (s *frameStack) setDestructor(fn func(*dirFrame)) {
	s.destructor = fn
}

func (s *frameStack) push(frame *dirFrame) {
	s.frames = append(s.frames, frame)
}

// top returns the current frame without removing it, or nil when the stack
// is empty.
func (s *frameStack) top() *dirFrame {
	if len(s.frames) == 0 {
		return nil
	}

	return s.frames[len(s.frames)-1]
}

// pop removes and returns the top frame, transferring ownership to the
// caller. Returns nil when the stack is empty.
func (s *frameStack) pop() *dirFrame {
	if len(s.frames) == 0 {
		return nil
	}

	frame := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]

	return frame
}

func (s *frameStack) len() int {
	return len(s.frames)
}

// destroy walks the remaining elements top-down and invokes the destructor
// on each. Safe to call on an already empty stack.
func (s *frameStack) destroy() {
	for {
		frame := s.pop()
		if frame == nil {
			break
		}

		if s.destructor != nil {
			s.destructor(frame)
		}
	}
}
