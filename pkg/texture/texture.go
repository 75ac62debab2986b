// Package texture extracts embedded images from GLB containers and splices
// replacement images back in, keeping every buffer view consistent.
package texture

import (
	"errors"

	"go.uber.org/zap"
)

// Texture handling errors.
var (
	ErrManifestNotFound         = errors.New("texture mapping manifest not found, extract textures first")
	ErrReplacementFileMissing   = errors.New("replacement texture file missing")
	ErrInconsistentBufferLayout = errors.New("inconsistent buffer layout")
	ErrUnknownNamingScheme      = errors.New("unknown naming scheme")
)

// Option configures Extract and Replace.
type Option func(*options)

type options struct {
	log           *zap.Logger
	skipUnchanged bool
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for progress and warnings.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithSkipUnchanged leaves images untouched when the replacement file still
// hashes to the value recorded at extraction time.
func WithSkipUnchanged(skip bool) Option {
	return func(o *options) {
		o.skipUnchanged = skip
	}
}
