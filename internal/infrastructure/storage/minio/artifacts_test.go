package minio

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore is an in-memory ObjectStorageRepository.
type fakeObjectStore struct {
	objects map[string][]byte // bucket/key -> data
	tags    map[string]map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		tags:    make(map[string]map[string]string),
	}
}

func (f *fakeObjectStore) path(bucket, key string) string { return bucket + "/" + key }

func (f *fakeObjectStore) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req.Bucket == "" || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	p := f.path(req.Bucket, req.ObjectKey)
	f.objects[p] = req.Data
	f.tags[p] = req.Tags
	return &UploadResult{Bucket: req.Bucket, ObjectKey: req.ObjectKey, Size: int64(len(req.Data))}, nil
}

func (f *fakeObjectStore) UploadStream(ctx context.Context, req *StreamUploadRequest) (*UploadResult, error) {
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, err
	}
	return f.Upload(ctx, &UploadRequest{Bucket: req.Bucket, ObjectKey: req.ObjectKey, Data: data})
}

func (f *fakeObjectStore) Download(ctx context.Context, bucket, key string) (*DownloadResult, error) {
	data, ok := f.objects[f.path(bucket, key)]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &DownloadResult{Data: data, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) DownloadToWriter(ctx context.Context, bucket, key string, w io.Writer) error {
	res, err := f.Download(ctx, bucket, key)
	if err != nil {
		return err
	}
	_, err = w.Write(res.Data)
	return err
}

func (f *fakeObjectStore) Delete(ctx context.Context, bucket, key string) error {
	delete(f.objects, f.path(bucket, key))
	return nil
}

func (f *fakeObjectStore) DeleteBatch(ctx context.Context, bucket string, keys []string) ([]DeleteError, error) {
	for _, k := range keys {
		delete(f.objects, f.path(bucket, k))
	}
	return nil, nil
}

func (f *fakeObjectStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, ok := f.objects[f.path(bucket, key)]
	return ok, nil
}

func (f *fakeObjectStore) GetMetadata(ctx context.Context, bucket, key string) (*ObjectMetadata, error) {
	data, ok := f.objects[f.path(bucket, key)]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &ObjectMetadata{Bucket: bucket, ObjectKey: key, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) List(ctx context.Context, bucket, prefix string, opts *ListOptions) (*ListResult, error) {
	var objs []*ObjectMetadata
	want := bucket + "/" + prefix
	for p, data := range f.objects {
		if len(p) >= len(want) && p[:len(want)] == want {
			objs = append(objs, &ObjectMetadata{Bucket: bucket, ObjectKey: p[len(bucket)+1:], Size: int64(len(data))})
		}
	}
	return &ListResult{Objects: objs, TotalCount: len(objs)}, nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	data, ok := f.objects[f.path(srcBucket, srcKey)]
	if !ok {
		return ErrObjectNotFound
	}
	f.objects[f.path(dstBucket, dstKey)] = data
	return nil
}

func (f *fakeObjectStore) Move(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if err := f.Copy(ctx, srcBucket, srcKey, dstBucket, dstKey); err != nil {
		return err
	}
	return f.Delete(ctx, srcBucket, srcKey)
}

func (f *fakeObjectStore) GetPresignedDownloadURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://minio.local/%s/%s?expires=%d", bucket, key, int64(expiry.Seconds())), nil
}

func (f *fakeObjectStore) GetPresignedUploadURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://minio.local/%s/%s", bucket, key), nil
}

func (f *fakeObjectStore) SetTags(ctx context.Context, bucket, key string, t map[string]string) error {
	f.tags[f.path(bucket, key)] = t
	return nil
}

func (f *fakeObjectStore) GetTags(ctx context.Context, bucket, key string) (map[string]string, error) {
	return f.tags[f.path(bucket, key)], nil
}

func newTestArtifactStore() (*ArtifactStore, *fakeObjectStore) {
	cfg := &MinIOConfig{}
	applyMinIODefaults(cfg)
	client := &MinIOClient{config: cfg}
	store := newFakeObjectStore()
	return NewArtifactStore(client, store), store
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

func TestArtifactStore_PutAndGetDocument(t *testing.T) {
	t.Parallel()
	store, fake := newTestArtifactStore()
	ctx := context.Background()

	_, err := store.PutDocument(ctx, "doc-1", "US", []byte("The custodian shall maintain records."))
	require.NoError(t, err)

	// Stored under a jurisdiction-scoped key with a jurisdiction tag.
	assert.Contains(t, fake.objects, "reggap-documents/US/doc-1.txt")
	assert.Equal(t, "US", fake.tags["reggap-documents/US/doc-1.txt"]["jurisdiction"])

	got, err := store.GetDocument(ctx, "doc-1", "US")
	require.NoError(t, err)
	assert.Equal(t, "The custodian shall maintain records.", string(got))
}

func TestArtifactStore_PutDocumentRejectsMissingFields(t *testing.T) {
	t.Parallel()
	store, _ := newTestArtifactStore()

	_, err := store.PutDocument(context.Background(), "", "US", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = store.PutDocument(context.Background(), "doc-1", "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestArtifactStore_ListDocumentsByJurisdiction(t *testing.T) {
	t.Parallel()
	store, _ := newTestArtifactStore()
	ctx := context.Background()

	_, err := store.PutDocument(ctx, "doc-1", "US", []byte("a"))
	require.NoError(t, err)
	_, err = store.PutDocument(ctx, "doc-2", "US", []byte("b"))
	require.NoError(t, err)
	_, err = store.PutDocument(ctx, "doc-3", "EU", []byte("c"))
	require.NoError(t, err)

	objs, err := store.ListDocuments(ctx, "US")
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

// ─────────────────────────────────────────────────────────────────────────────
// Report artifacts
// ─────────────────────────────────────────────────────────────────────────────

func TestArtifactStore_ReportArtifactFormats(t *testing.T) {
	t.Parallel()
	store, fake := newTestArtifactStore()
	ctx := context.Background()

	_, err := store.PutReportArtifact(ctx, "REG-GAP-00001", "json", []byte(`{"report_id":"REG-GAP-00001"}`))
	require.NoError(t, err)
	_, err = store.PutReportArtifact(ctx, "REG-GAP-00001", "markdown", []byte("# Report"))
	require.NoError(t, err)
	_, err = store.PutReportArtifact(ctx, "REG-GAP-00001", "text", []byte("Report"))
	require.NoError(t, err)

	assert.Contains(t, fake.objects, "reggap-reports/REG-GAP-00001/REG-GAP-00001.json")
	assert.Contains(t, fake.objects, "reggap-reports/REG-GAP-00001/REG-GAP-00001.md")
	assert.Contains(t, fake.objects, "reggap-reports/REG-GAP-00001/REG-GAP-00001.txt")

	got, err := store.GetReportArtifact(ctx, "REG-GAP-00001", "markdown")
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(got))
}

func TestArtifactStore_PresignReportDownload(t *testing.T) {
	t.Parallel()
	store, _ := newTestArtifactStore()

	url, err := store.PresignReportDownload(context.Background(), "REG-GAP-00001", "json", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "REG-GAP-00001.json")
}

func TestArtifactStore_DeleteReportArtifacts(t *testing.T) {
	t.Parallel()
	store, fake := newTestArtifactStore()
	ctx := context.Background()

	_, err := store.PutReportArtifact(ctx, "REG-GAP-00001", "json", []byte("{}"))
	require.NoError(t, err)
	_, err = store.PutReportArtifact(ctx, "REG-GAP-00001", "markdown", []byte("#"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteReportArtifacts(ctx, "REG-GAP-00001"))
	assert.Empty(t, fake.objects)
}
