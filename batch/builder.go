package batch

// Builder groups commands into batches. A Builder reuses its vertex and
// index storage across frames; the batches returned by Build are valid
// until the next call to Build or Reset.
type Builder struct {
	batches []Batch
	n       int
}

// Build converts cmds, in order, into the shortest sequence of batches
// that preserves draw order. A new batch opens whenever a command's key
// differs from the previous command's key. Nil commands draw nothing and
// do not split the surrounding run.
func (b *Builder) Build(cmds []Command) []Batch {
	b.Reset()

	current := Key{}
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		key := cmd.Key()
		if b.n == 0 || key != current {
			b.open(key)
			current = key
		}
		cmd.appendQuad(&b.batches[b.n-1])
	}
	return b.batches[:b.n]
}

// Reset discards the batches of the previous Build.
func (b *Builder) Reset() {
	b.n = 0
}

func (b *Builder) open(key Key) {
	if b.n < len(b.batches) {
		bt := &b.batches[b.n]
		bt.Key = key
		bt.Vertices = bt.Vertices[:0]
		bt.Indices = bt.Indices[:0]
	} else {
		b.batches = append(b.batches, Batch{Key: key})
	}
	b.n++
}

// Build is a convenience wrapper that groups cmds with a fresh Builder.
func Build(cmds []Command) []Batch {
	var b Builder
	return b.Build(cmds)
}
