package sink

import (
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mwantia/tarbuild/data/errs"
)

// S3Sink streams archives into an S3 bucket. The tar stream is piped into a
// background PutObject, so the archive never has to fit in memory or on
// local disk.
type S3Sink struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewS3 creates a sink uploading into the given bucket. An optional prefix
// is prepended to every archive name.
func NewS3(endpoint, bucketName, accessKey, secretKey string, useSsl bool, prefix string) (*S3Sink, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &S3Sink{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

// Name returns the identifier name defined for this sink.
func (*S3Sink) Name() string {
	return "s3"
}

func (ss *S3Sink) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	exists, err := ss.client.BucketExists(ctx, ss.bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.SinkUnavailable(nil, ss.bucketName)
	}

	key := name
	if ss.prefix != "" {
		key = ss.prefix + "/" + name
	}

	pr, pw := io.Pipe()

	stream := &s3Stream{
		writer: pw,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(stream.done)

		// Size -1 streams the upload in parts.
		_, err := ss.client.PutObject(ctx, ss.bucketName, key, pr, -1, minio.PutObjectOptions{
			ContentType: "application/x-tar",
		})
		if err != nil {
			pr.CloseWithError(err)

			stream.mu.Lock()
			stream.err = err
			stream.mu.Unlock()
		}
	}()

	return stream, nil
}

type s3Stream struct {
	mu     sync.Mutex
	writer *io.PipeWriter
	done   chan struct{}
	err    error
}

func (s *s3Stream) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Close finishes the upload and reports its result.
func (s *s3Stream) Close() error {
	if err := s.writer.Close(); err != nil {
		return err
	}

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}
