package msg

import (
	"log/slog"

	"github.com/robert-malhotra/go-msg/internal/rtf"
)

// Option configures decoding, assembly and conversion.
type Option func(*options)

type options struct {
	logger *slog.Logger

	// decode
	codepage    int
	resolveRefs bool
	refRoot     string

	// assemble
	resolver     Resolver
	renderer     Renderer
	headerParser HeaderParser
	rawRTF       bool
}

func defaultOptions() *options {
	return &options{
		logger:       slog.New(slog.DiscardHandler),
		resolveRefs:  true,
		resolver:     NullResolver{},
		renderer:     rtf.Renderer{},
		headerParser: ParseHeaderBlock,
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for soft failures. Nothing is logged by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCodepage forces the code page used for PT_STRING8 properties,
// overriding the code page stored in the message.
func WithCodepage(cp int) Option {
	return func(o *options) {
		if cp > 0 {
			o.codepage = cp
		}
	}
}

// WithReferenceResolution controls whether by-reference attachments are
// read from disk. Enabled by default.
func WithReferenceResolution(enabled bool) Option {
	return func(o *options) {
		o.resolveRefs = enabled
	}
}

// WithReferenceRoot resolves relative by-reference attachment paths
// against dir.
func WithReferenceRoot(dir string) Option {
	return func(o *options) {
		o.refRoot = dir
	}
}

// WithResolver sets the address resolver used for the sender and
// appointment organizer.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithRenderer replaces the RTF renderer.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithHeaderParser replaces the transport header unfolder.
func WithHeaderParser(p HeaderParser) Option {
	return func(o *options) {
		if p != nil {
			o.headerParser = p
		}
	}
}

// WithRawRTF adds the decompressed RTF body as an application/rtf
// alternative.
func WithRawRTF(enabled bool) Option {
	return func(o *options) {
		o.rawRTF = enabled
	}
}
