package classfile

import (
	"github.com/tliron/commonlog"
)

const loggerName = "jclass.classfile"

// Option configures Parse.
type Option func(*options)

type options struct {
	skipAttributes     bool
	tolerateTruncation bool
	trace              bool
	logger             commonlog.Logger
	onWarning          func(error)
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		// Resolved per parse: the backend is usually configured after
		// package initialization.
		o.logger = commonlog.GetLogger(loggerName)
	}
	return o
}

// WithSkipAttributes keeps only the declared length of every attribute.
// A class file parsed this way cannot be written back.
func WithSkipAttributes() Option {
	return func(o *options) {
		o.skipAttributes = true
	}
}

// WithTolerateTruncation accepts input that ends while the class attributes
// are being read. The attributes read so far are kept and a
// TruncationWarning is reported.
func WithTolerateTruncation() Option {
	return func(o *options) {
		o.tolerateTruncation = true
	}
}

// WithTrace logs every structure with its stream offset at debug level.
func WithTrace() Option {
	return func(o *options) {
		o.trace = true
	}
}

func WithLogger(logger commonlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWarningHandler receives every non-fatal problem found while parsing,
// in addition to it being logged.
func WithWarningHandler(fn func(error)) Option {
	return func(o *options) {
		o.onWarning = fn
	}
}

func (o *options) warn(err error) {
	o.logger.Warningf("%s", err)
	if o.onWarning != nil {
		o.onWarning(err)
	}
}

func (o *options) tracef(format string, args ...any) {
	if o.trace {
		o.logger.Debugf(format, args...)
	}
}
