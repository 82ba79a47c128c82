package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/crimson-sun/apptimeline/internal/connector"
)

const defaultEndpoint = "s3.amazonaws.com"

func init() {
	for _, scheme := range []string{"s3", "s3a", "s3n"} {
		connector.Register(scheme, New)
	}
}

// store is the subset of object-store calls the connector needs.
type store interface {
	listKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Connector reads log objects from any S3-compatible object store.
type Connector struct {
	store store
}

// New creates an S3 connector. Static keys are used when both are set;
// otherwise credentials come from the AWS environment, shared credentials
// file, or instance role, in that order.
func New(cfg connector.ConnectorConfig) (connector.Connector, error) {
	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)

	var creds *credentials.Credentials
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 connector: %w", err)
	}
	return &Connector{store: &minioStore{client: client}}, nil
}

// List returns every object under the pattern's bucket whose key matches the
// pattern's glob, skipping hidden and metadata objects. Paths keep the
// pattern's scheme, e.g. s3a://bucket/key.
func (c *Connector) List(ctx context.Context, pattern string) ([]string, error) {
	loc, err := parseLocation(pattern)
	if err != nil {
		return nil, err
	}

	keys, err := c.store.listKeys(ctx, loc.bucket, loc.prefix())
	if err != nil {
		return nil, fmt.Errorf("s3 connector: list %s: %w", pattern, err)
	}

	var paths []string
	for _, key := range keys {
		ok, err := path.Match(loc.key, key)
		if err != nil {
			return nil, fmt.Errorf("s3 connector: bad pattern %q: %w", pattern, err)
		}
		if ok && !connector.Hidden(key) {
			paths = append(paths, loc.scheme+"://"+loc.bucket+"/"+key)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (c *Connector) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	loc, err := parseLocation(p)
	if err != nil {
		return nil, err
	}
	rc, err := c.store.get(ctx, loc.bucket, loc.key)
	if err != nil {
		return nil, fmt.Errorf("s3 connector: get %s: %w", p, err)
	}
	return rc, nil
}

// location is a parsed scheme://bucket/key URI. key may contain wildcards.
type location struct {
	scheme string
	bucket string
	key    string
}

func parseLocation(uri string) (location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return location{}, fmt.Errorf("s3 connector: %q is not an s3 URI", uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return location{}, fmt.Errorf("s3 connector: %q has no bucket", uri)
	}
	return location{scheme: strings.ToLower(scheme), bucket: bucket, key: key}, nil
}

// prefix is the literal part of the key before its first wildcard.
func (l location) prefix() string {
	if i := strings.IndexAny(l.key, "*?[\\"); i >= 0 {
		return l.key[:i]
	}
	return l.key
}

// normalizeEndpoint strips an http(s):// scheme, which also decides TLS.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case endpoint == "":
		return defaultEndpoint, true
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	}
	return endpoint, useSSL
}

type minioStore struct {
	client *minio.Client
}

func (m *minioStore) listKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	// Cancelling stops the listing goroutine on early return.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (m *minioStore) get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}
