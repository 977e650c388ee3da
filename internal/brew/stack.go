package brew

// Stack is the navigation context: the objects a chain descended through,
// most recently pushed first. A Stack is never mutated; Push and Pop return
// new stacks and entries are shared references.
type Stack []any

// Push returns a new stack with v on top.
func (s Stack) Push(v any) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

// Pop returns the top entry and the rest. ok is false on an empty stack.
func (s Stack) Pop() (top any, rest Stack, ok bool) {
	if len(s) == 0 {
		return nil, nil, false
	}
	return s[0], s[1:len(s):len(s)], true
}

// Top returns the most recently pushed entry.
func (s Stack) Top() (any, bool) {
	if len(s) == 0 {
		return nil, false
	}
	return s[0], true
}

// Len returns the stack depth.
func (s Stack) Len() int {
	return len(s)
}
