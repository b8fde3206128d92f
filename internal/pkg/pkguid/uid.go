package pkguid

// StringID mints unique string identifiers, such as UUIDs.
type StringID interface {
	Generate() string
}

// NumberID mints unique numeric identifiers, such as snowflakes.
type NumberID interface {
	Generate() int64
}
