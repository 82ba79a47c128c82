package apptimeline

import "runtime"

type options struct {
	workers   int
	strictIDs bool
	endpoint  string
	region    string
	accessKey string
	secretKey string
	insecure  bool
}

// Option configures Analyze.
type Option func(*options)

// WithWorkers sets how many log objects are read concurrently.
// Default: runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithStrictIDs drops records whose path carries no application identifiers
// instead of grouping them under empty ids.
func WithStrictIDs(strict bool) Option {
	return func(o *options) {
		o.strictIDs = strict
	}
}

// WithEndpoint points object store patterns at an S3-compatible endpoint
// such as a MinIO server. insecure selects plain HTTP.
func WithEndpoint(endpoint string, insecure bool) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.insecure = insecure
	}
}

// WithRegion sets the object store region.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithCredentials sets static object store credentials. Without them the
// AWS environment, shared credentials file and instance role are tried.
func WithCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

func defaultOptions() options {
	return options{workers: runtime.NumCPU()}
}
