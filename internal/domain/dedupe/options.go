package dedupe

type options struct {
	capacity int
}

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*options)

// WithCapacity pre-sizes the seen set; the player list length is a good hint.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
