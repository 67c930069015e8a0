package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"traindesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ContentServiceTestSuite struct {
	suite.Suite
	mockContentRepo    *MockContentItemRepository
	mockModuleRepo     *MockModuleRepository
	mockCourseRepo     *MockCourseRepository
	mockAssignmentRepo *MockAssignmentRepository
	mockMembershipRepo *MockMembershipRepository
	mockStorage        *MockStorageService
	mockAuditRepo      *MockAuditLogsRepository
	service            ContentService

	tenantID uuid.UUID
}

func (suite *ContentServiceTestSuite) SetupTest() {
	suite.mockContentRepo = &MockContentItemRepository{}
	suite.mockModuleRepo = &MockModuleRepository{}
	suite.mockCourseRepo = &MockCourseRepository{}
	suite.mockAssignmentRepo = &MockAssignmentRepository{}
	suite.mockMembershipRepo = &MockMembershipRepository{}
	suite.mockStorage = &MockStorageService{}
	suite.mockAuditRepo = &MockAuditLogsRepository{}
	suite.service = NewContentService(suite.mockContentRepo, suite.mockModuleRepo, suite.mockCourseRepo,
		suite.mockAssignmentRepo, suite.mockMembershipRepo, suite.mockStorage, NewAuditService(suite.mockAuditRepo), "test-bucket")

	suite.tenantID = uuid.New()

	suite.mockContentRepo.Test(suite.T())
	suite.mockModuleRepo.Test(suite.T())
	suite.mockCourseRepo.Test(suite.T())
	suite.mockAssignmentRepo.Test(suite.T())
	suite.mockMembershipRepo.Test(suite.T())
	suite.mockStorage.Test(suite.T())
	suite.mockAuditRepo.Test(suite.T())
}

func (suite *ContentServiceTestSuite) TearDownTest() {
	suite.mockContentRepo.AssertExpectations(suite.T())
	suite.mockAssignmentRepo.AssertExpectations(suite.T())
	suite.mockMembershipRepo.AssertExpectations(suite.T())
	suite.mockStorage.AssertExpectations(suite.T())
}

func TestContentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContentServiceTestSuite))
}

func storedItem(tenantID uuid.UUID) *models.ContentItem {
	path := "tenant/x/modules/y/file.pdf"
	return &models.ContentItem{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ModuleID:      uuid.New(),
		Title:         "Handbook",
		Type:          models.ContentTypePDF,
		ContentSource: models.ContentSourceStorage,
		StoragePath:   &path,
	}
}

func (suite *ContentServiceTestSuite) TestSignedURL_Success() {
	ctx := context.Background()
	principal := testPrincipal()
	item := storedItem(suite.tenantID)

	suite.mockContentRepo.On("GetByID", ctx, item.ID).Return(item, nil)
	suite.mockMembershipRepo.On("GetActive", ctx, suite.tenantID, principal.ID).Return(&models.Membership{
		TenantID: suite.tenantID,
		UserID:   principal.ID,
		Role:     models.RoleEmployee,
		Active:   true,
	}, nil)
	suite.mockStorage.On("PresignedURL", ctx, "test-bucket", *item.StoragePath, SignedURLExpiry).
		Return("https://minio.example.com/signed", nil)

	url, err := suite.service.SignedURL(ctx, principal, item.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://minio.example.com/signed", url)
}

func (suite *ContentServiceTestSuite) TestSignedURL_MissingItem() {
	ctx := context.Background()
	principal := testPrincipal()
	itemID := uuid.New()

	suite.mockContentRepo.On("GetByID", ctx, itemID).Return(nil, pgx.ErrNoRows)

	url, err := suite.service.SignedURL(ctx, principal, itemID)
	assert.ErrorIs(suite.T(), err, ErrNoAccess)
	assert.Empty(suite.T(), url)
}

func (suite *ContentServiceTestSuite) TestSignedURL_NoMembershipInItemsTenant() {
	ctx := context.Background()
	principal := testPrincipal()
	item := storedItem(suite.tenantID)

	suite.mockContentRepo.On("GetByID", ctx, item.ID).Return(item, nil)
	suite.mockMembershipRepo.On("GetActive", ctx, suite.tenantID, principal.ID).Return(nil, pgx.ErrNoRows)

	// Same error as a missing item; the caller cannot tell them apart.
	url, err := suite.service.SignedURL(ctx, principal, item.ID)
	assert.ErrorIs(suite.T(), err, ErrNoAccess)
	assert.Empty(suite.T(), url)
	suite.mockStorage.AssertNotCalled(suite.T(), "PresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ContentServiceTestSuite) TestSignedURL_ExternalItemHasNoFile() {
	ctx := context.Background()
	principal := testPrincipal()
	item := &models.ContentItem{
		ID:            uuid.New(),
		TenantID:      suite.tenantID,
		Title:         "Video",
		Type:          models.ContentTypeYoutube,
		ContentSource: models.ContentSourceExternal,
		URL:           "https://youtube.com/watch?v=abc",
	}

	suite.mockContentRepo.On("GetByID", ctx, item.ID).Return(item, nil)
	suite.mockMembershipRepo.On("GetActive", ctx, suite.tenantID, principal.ID).Return(&models.Membership{
		Role: models.RoleEmployee, Active: true,
	}, nil)

	url, err := suite.service.SignedURL(ctx, principal, item.ID)
	assert.ErrorIs(suite.T(), err, ErrNoAccess)
	assert.Empty(suite.T(), url)
}

func (suite *ContentServiceTestSuite) TestSignedURL_NilPrincipal() {
	url, err := suite.service.SignedURL(context.Background(), nil, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrNoAccess)
	assert.Empty(suite.T(), url)
}

func (suite *ContentServiceTestSuite) TestSignedURL_MembershipStoreDown() {
	ctx := context.Background()
	principal := testPrincipal()
	item := storedItem(suite.tenantID)

	suite.mockContentRepo.On("GetByID", ctx, item.ID).Return(item, nil)
	suite.mockMembershipRepo.On("GetActive", ctx, suite.tenantID, principal.ID).Return(nil, errors.New("connection refused"))

	url, err := suite.service.SignedURL(ctx, principal, item.ID)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrNoAccess)
	assert.Empty(suite.T(), url)
}

func (suite *ContentServiceTestSuite) TestAssignedModuleContent_Success() {
	ctx := context.Background()
	employeeID := uuid.New()
	courseID := uuid.New()
	module := &models.Module{ID: uuid.New(), TenantID: suite.tenantID, CourseID: courseID, Title: "Week 1"}
	items := []*models.ContentItem{{ID: uuid.New(), ModuleID: module.ID, Title: "Handbook"}}

	suite.mockModuleRepo.On("GetByID", ctx, suite.tenantID, module.ID).Return(module, nil)
	suite.mockCourseRepo.On("GetByID", ctx, suite.tenantID, courseID).Return(&models.Course{
		ID: courseID, TenantID: suite.tenantID, Status: models.CourseStatusPublished,
	}, nil)
	suite.mockAssignmentRepo.On("Exists", ctx, suite.tenantID, employeeID, courseID).Return(true, nil)
	suite.mockContentRepo.On("ListByModule", ctx, suite.tenantID, module.ID).Return(items, nil)

	got, err := suite.service.AssignedModuleContent(ctx, suite.tenantID, employeeID, module.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), items, got)
}

func (suite *ContentServiceTestSuite) TestAssignedModuleContent_UnassignedCourseIsNotFound() {
	ctx := context.Background()
	employeeID := uuid.New()
	courseID := uuid.New()
	module := &models.Module{ID: uuid.New(), TenantID: suite.tenantID, CourseID: courseID}

	suite.mockModuleRepo.On("GetByID", ctx, suite.tenantID, module.ID).Return(module, nil)
	suite.mockCourseRepo.On("GetByID", ctx, suite.tenantID, courseID).Return(&models.Course{
		ID: courseID, TenantID: suite.tenantID, Status: models.CourseStatusPublished,
	}, nil)
	suite.mockAssignmentRepo.On("Exists", ctx, suite.tenantID, employeeID, courseID).Return(false, nil)

	got, err := suite.service.AssignedModuleContent(ctx, suite.tenantID, employeeID, module.ID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
	suite.mockContentRepo.AssertNotCalled(suite.T(), "ListByModule", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ContentServiceTestSuite) TestAssignedModuleContent_DraftCourseIsNotFound() {
	ctx := context.Background()
	employeeID := uuid.New()
	courseID := uuid.New()
	module := &models.Module{ID: uuid.New(), TenantID: suite.tenantID, CourseID: courseID}

	suite.mockModuleRepo.On("GetByID", ctx, suite.tenantID, module.ID).Return(module, nil)
	suite.mockCourseRepo.On("GetByID", ctx, suite.tenantID, courseID).Return(&models.Course{
		ID: courseID, TenantID: suite.tenantID, Status: models.CourseStatusDraft,
	}, nil)

	got, err := suite.service.AssignedModuleContent(ctx, suite.tenantID, employeeID, module.ID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
	suite.mockAssignmentRepo.AssertNotCalled(suite.T(), "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ContentServiceTestSuite) TestAssignedModuleContent_MissingModule() {
	ctx := context.Background()
	moduleID := uuid.New()

	suite.mockModuleRepo.On("GetByID", ctx, suite.tenantID, moduleID).Return(nil, pgx.ErrNoRows)

	got, err := suite.service.AssignedModuleContent(ctx, suite.tenantID, uuid.New(), moduleID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), got)
}

func (suite *ContentServiceTestSuite) TestCreate_ExternalContent() {
	ctx := context.Background()
	moduleID := uuid.New()
	actor := uuid.New()

	suite.mockModuleRepo.On("GetByID", ctx, suite.tenantID, moduleID).Return(&models.Module{ID: moduleID, TenantID: suite.tenantID}, nil)
	suite.mockContentRepo.On("Create", ctx, mock.AnythingOfType("*models.ContentItem")).Return(nil)
	suite.mockAuditRepo.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	item, err := suite.service.Create(ctx, suite.tenantID, &actor, &CreateContentRequest{
		ModuleID: moduleID,
		Title:    "Welcome video",
		URL:      "https://youtube.com/watch?v=abc",
		Type:     models.ContentTypeYoutube,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ContentSourceExternal, item.ContentSource)
	assert.Equal(suite.T(), suite.tenantID, item.TenantID)
}

func (suite *ContentServiceTestSuite) TestCreate_InvalidType() {
	actor := uuid.New()
	item, err := suite.service.Create(context.Background(), suite.tenantID, &actor, &CreateContentRequest{
		ModuleID: uuid.New(),
		Title:    "Broken",
		URL:      "https://example.com",
		Type:     "floppy",
	})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), item)
}

func (suite *ContentServiceTestSuite) TestUploadFile_PathLayout() {
	ctx := context.Background()
	moduleID := uuid.New()

	suite.mockStorage.On("Upload", ctx, "test-bucket", mock.AnythingOfType("string"), "application/pdf",
		mock.Anything, int64(4)).Return(nil)

	path, err := suite.service.UploadFile(ctx, suite.tenantID, moduleID, "handbook.pdf", "application/pdf",
		strings.NewReader("data"), 4)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), strings.HasPrefix(path, "tenant/"+suite.tenantID.String()+"/modules/"+moduleID.String()+"/"))
	assert.True(suite.T(), strings.HasSuffix(path, ".pdf"))
}
