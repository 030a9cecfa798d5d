package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/gobeaver/datafy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	objects map[string][]byte
	heads   int

	// unknownLength leaves ContentLength unset, as for chunked responses.
	unknownLength bool
}

func (f *fakeAPI) length(data []byte) *int64 {
	if f.unknownLength {
		return nil
	}
	return aws.Int64(int64(len(data)))
}

func (f *fakeAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.heads++
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, notFound()
	}
	return &s3.HeadObjectOutput{
		ContentType:   aws.String("text/csv"),
		ContentLength: f.length(data),
	}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, notFound()
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   aws.String("text/csv"),
		ContentLength: f.length(data),
		ETag:          aws.String(`"abc"`),
	}, nil
}

func notFound() error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
			Err:      errors.New("not found"),
		},
	}
}

func TestFetcher_ProbeAndFetch(t *testing.T) {
	api := &fakeAPI{objects: map[string][]byte{"data/stations.csv": []byte("id,name\n1,a\n")}}
	f := New(api)
	u, _ := url.Parse("s3://data/stations.csv")

	meta, err := f.Probe(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", meta.ContentType)
	assert.Equal(t, int64(12), meta.ContentLength)

	resp, data, err := f.Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,a\n", string(data))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"abc"`, resp.Header.Get("ETag"))
}

func TestFetcher_UnknownLength(t *testing.T) {
	api := &fakeAPI{objects: map[string][]byte{"data/stations.csv": []byte("id,name\n1,a\n")}, unknownLength: true}
	f := New(api)
	u, _ := url.Parse("s3://data/stations.csv")

	meta, err := f.Probe(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), meta.ContentLength)

	resp, data, err := f.Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), resp.ContentLength)
	assert.Equal(t, "id,name\n1,a\n", string(data))
}

func TestFetcher_NotFound(t *testing.T) {
	f := New(&fakeAPI{})
	u, _ := url.Parse("s3://data/missing.csv")

	_, _, err := f.Fetch(context.Background(), u)
	require.Error(t, err)
	assert.True(t, datafy.IsTransport(err))

	var te *datafy.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{uri: "s3://bucket/key.csv", bucket: "bucket", key: "key.csv"},
		{uri: "s3://bucket/nested/dir/key.zip", bucket: "bucket", key: "nested/dir/key.zip"},
		{uri: "s3://bucket", wantErr: true},
		{uri: "s3:///key.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			u, err := url.Parse(tt.uri)
			require.NoError(t, err)

			bucket, key, err := parseURI(u)
			if tt.wantErr {
				assert.ErrorIs(t, err, datafy.ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestResolveThroughResolver(t *testing.T) {
	api := &fakeAPI{objects: map[string][]byte{"data/stations.csv": []byte("id,name\n1,a\n2,b\n")}}
	r, err := datafy.New(datafy.DefaultConfig(), datafy.WithFetcher("s3", New(api)))
	require.NoError(t, err)

	items, err := r.Resolve(context.Background(), "s3://data/stations.csv", datafy.WithSizeLimit(1024))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, datafy.TagCSV, items[0].TypeTag)
	assert.True(t, items[0].Parsed())
	assert.Equal(t, 1, api.heads)
}
