package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AttachmentServiceTestSuite struct {
	suite.Suite
	mockStore *MockObjectStore
	service   AttachmentService
}

func (suite *AttachmentServiceTestSuite) SetupTest() {
	suite.mockStore = &MockObjectStore{}
	suite.service = NewAttachmentService(suite.mockStore, "request-photos")

	suite.mockStore.Test(suite.T())
}

func (suite *AttachmentServiceTestSuite) TearDownTest() {
	suite.mockStore.AssertExpectations(suite.T())
}

func TestAttachmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentServiceTestSuite))
}

func (suite *AttachmentServiceTestSuite) TestUpload_KeyedUnderRequestPrefix() {
	ctx := context.Background()
	requestID := uuid.New()
	body := bytes.NewReader([]byte("jpeg-bytes"))

	suite.mockStore.On("Upload", ctx, "request-photos", mock.AnythingOfType("string"), body, int64(10), "image/jpeg").
		Return(nil).Run(func(args mock.Arguments) {
		key := args.Get(2).(string)
		assert.True(suite.T(), strings.HasPrefix(key, "requests/"+requestID.String()+"/"))
		assert.True(suite.T(), strings.HasSuffix(key, ".jpg"))
	})
	suite.mockStore.On("PresignedURL", ctx, "request-photos", mock.AnythingOfType("string"), attachmentURLExpiry).
		Return("https://minio.example.com/presigned", nil)

	photo, err := suite.service.Upload(ctx, requestID, body, 10, "image/jpeg")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), photo)
	assert.Equal(suite.T(), "https://minio.example.com/presigned", photo.URL)
}

func (suite *AttachmentServiceTestSuite) TestUpload_RejectsNonImageContentType() {
	ctx := context.Background()

	photo, err := suite.service.Upload(ctx, uuid.New(), bytes.NewReader(nil), 10, "application/pdf")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), photo)
	assert.ErrorIs(suite.T(), err, ErrValidation)
	suite.mockStore.AssertNotCalled(suite.T(), "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AttachmentServiceTestSuite) TestUpload_RejectsOversizedFile() {
	ctx := context.Background()

	photo, err := suite.service.Upload(ctx, uuid.New(), bytes.NewReader(nil), maxAttachmentSize+1, "image/png")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), photo)
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *AttachmentServiceTestSuite) TestList_PresignsEveryKey() {
	ctx := context.Background()
	requestID := uuid.New()
	prefix := "requests/" + requestID.String() + "/"
	keys := []string{prefix + "a.jpg", prefix + "b.png"}

	suite.mockStore.On("ListKeys", ctx, "request-photos", prefix).Return(keys, nil)
	suite.mockStore.On("PresignedURL", ctx, "request-photos", keys[0], attachmentURLExpiry).Return("https://minio/a", nil)
	suite.mockStore.On("PresignedURL", ctx, "request-photos", keys[1], attachmentURLExpiry).Return("https://minio/b", nil)

	photos, err := suite.service.List(ctx, requestID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), photos, 2)
	assert.Equal(suite.T(), keys[0], photos[0].Key)
	assert.Equal(suite.T(), "https://minio/b", photos[1].URL)
}

func (suite *AttachmentServiceTestSuite) TestDelete_RefusesForeignKey() {
	ctx := context.Background()
	requestID := uuid.New()
	otherID := uuid.New()

	err := suite.service.Delete(ctx, requestID, "requests/"+otherID.String()+"/photo.jpg")
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, ErrValidation)
	suite.mockStore.AssertNotCalled(suite.T(), "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AttachmentServiceTestSuite) TestDelete_RemovesOwnedKey() {
	ctx := context.Background()
	requestID := uuid.New()
	key := "requests/" + requestID.String() + "/photo.jpg"

	suite.mockStore.On("Remove", ctx, "request-photos", key).Return(nil)

	err := suite.service.Delete(ctx, requestID, key)
	assert.NoError(suite.T(), err)
}

func (suite *AttachmentServiceTestSuite) TestList_StoreError() {
	ctx := context.Background()
	requestID := uuid.New()

	suite.mockStore.On("ListKeys", ctx, "request-photos", mock.AnythingOfType("string")).
		Return(nil, errors.New("bucket unreachable"))

	photos, err := suite.service.List(ctx, requestID)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), photos)
	assert.ErrorIs(suite.T(), err, ErrLookupFailed)
}
