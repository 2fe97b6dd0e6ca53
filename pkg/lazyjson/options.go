package lazyjson

import "os"

type options[T any] struct {
	indent          string
	fileMode        os.FileMode
	createIfMissing bool
	defaultValue    func() *T
}

// Option configures a Manager.
type Option[T any] func(*options[T])

// WithIndent sets the indentation used when saving. "" writes compact JSON.
func WithIndent[T any](indent string) Option[T] {
	return func(o *options[T]) { o.indent = indent }
}

// WithFileMode sets the permissions of the saved file. Default 0644.
func WithFileMode[T any](mode os.FileMode) Option[T] {
	return func(o *options[T]) { o.fileMode = mode }
}

// WithCreateIfMissing controls whether a missing file yields a fresh
// document (default) or an error.
func WithCreateIfMissing[T any](create bool) Option[T] {
	return func(o *options[T]) { o.createIfMissing = create }
}

// WithDefaultValue supplies the document used when the file is missing.
// It is also the base that an existing file is decoded over, so fields
// absent from the file keep their defaults.
func WithDefaultValue[T any](fn func() *T) Option[T] {
	return func(o *options[T]) { o.defaultValue = fn }
}
