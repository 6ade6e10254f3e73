package api

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 32 << 20

// Option configures a Server.
type Option func(*options)

type options struct {
	maxUploadBytes int64
}

func defaultOptions() options {
	return options{maxUploadBytes: DefaultMaxUploadBytes}
}

// WithMaxUploadBytes limits the size of POST /sessions bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}
