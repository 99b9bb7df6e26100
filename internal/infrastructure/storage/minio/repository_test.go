package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

func newMockedRepository(api MinIOAPI) ObjectStorageRepository {
	return NewMinIORepository(newMockedClient(api), logging.NewNopLogger())
}

// ─────────────────────────────────────────────────────────────────────────────
// Upload
// ─────────────────────────────────────────────────────────────────────────────

func TestUpload_Success(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("PutObject", mock.Anything, "reggap-documents", "US/doc-1.txt",
		mock.Anything, int64(11), mock.Anything).
		Return(minio.UploadInfo{Bucket: "reggap-documents", Key: "US/doc-1.txt", ETag: "abc", Size: 11}, nil)

	res, err := repo.Upload(context.Background(), &UploadRequest{
		Bucket:      "reggap-documents",
		ObjectKey:   "US/doc-1.txt",
		Data:        []byte("hello world"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.ETag)
	assert.Equal(t, int64(11), res.Size)
	api.AssertExpectations(t)
}

func TestUpload_RejectsMissingBucketOrKey(t *testing.T) {
	repo := newMockedRepository(new(MockMinIOAPI))

	_, err := repo.Upload(context.Background(), &UploadRequest{ObjectKey: "k"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = repo.Upload(context.Background(), &UploadRequest{Bucket: "b"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUpload_DetectsContentType(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("PutObject", mock.Anything, "b", "k", mock.Anything, mock.Anything,
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.ContentType != ""
		})).
		Return(minio.UploadInfo{Bucket: "b", Key: "k"}, nil)

	_, err := repo.Upload(context.Background(), &UploadRequest{
		Bucket:    "b",
		ObjectKey: "k",
		Data:      []byte("plain text content"),
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestUpload_PropagatesError(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("PutObject", mock.Anything, "b", "k", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	_, err := repo.Upload(context.Background(), &UploadRequest{
		Bucket: "b", ObjectKey: "k", Data: []byte("x"),
	})
	require.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Stat / Exists / Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestExists_TrueAndFalse(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("StatObject", mock.Anything, "b", "present", mock.Anything).
		Return(minio.ObjectInfo{Key: "present"}, nil)
	api.On("StatObject", mock.Anything, "b", "absent", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	ok, err := repo.Exists(context.Background(), "b", "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "b", "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMetadata_NotFound(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("StatObject", mock.Anything, "b", "absent", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := repo.GetMetadata(context.Background(), "b", "absent")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestDelete_DelegatesToRemoveObject(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("RemoveObject", mock.Anything, "b", "k", mock.Anything).Return(nil)

	require.NoError(t, repo.Delete(context.Background(), "b", "k"))
	api.AssertExpectations(t)
}

func TestDeleteBatch_CollectsErrors(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	errCh := make(chan minio.RemoveObjectError, 1)
	errCh <- minio.RemoveObjectError{ObjectName: "k2", Err: assert.AnError}
	close(errCh)

	api.On("RemoveObjects", mock.Anything, "b", mock.Anything, mock.Anything).
		Return((<-chan minio.RemoveObjectError)(errCh))

	errs, err := repo.DeleteBatch(context.Background(), "b", []string{"k1", "k2"})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "k2", errs[0].ObjectKey)
}

// ─────────────────────────────────────────────────────────────────────────────
// List / Copy / Move
// ─────────────────────────────────────────────────────────────────────────────

func TestList_ReturnsObjectsUpToMaxKeys(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "US/a.txt", Size: 10}
	ch <- minio.ObjectInfo{Key: "US/b.txt", Size: 20}
	ch <- minio.ObjectInfo{Key: "US/c.txt", Size: 30}
	close(ch)

	api.On("ListObjects", mock.Anything, "b", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	res, err := repo.List(context.Background(), "b", "US/", &ListOptions{MaxKeys: 2, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, "US/a.txt", res.Objects[0].ObjectKey)
}

func TestMove_CopiesThenDeletes(t *testing.T) {
	api := new(MockMinIOAPI)
	repo := newMockedRepository(api)

	api.On("CopyObject", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	api.On("RemoveObject", mock.Anything, "src", "k", mock.Anything).Return(nil)

	require.NoError(t, repo.Move(context.Background(), "src", "k", "dst", "k"))
	api.AssertExpectations(t)
}
