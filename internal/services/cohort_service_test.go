package services

import (
	"context"
	"testing"

	"traindesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CohortServiceTestSuite struct {
	suite.Suite
	mockCohortRepo *MockCohortRepository
	mockAuditRepo  *MockAuditLogsRepository
	service        CohortService

	tenantID uuid.UUID
	actorID  uuid.UUID
}

func (suite *CohortServiceTestSuite) SetupTest() {
	suite.mockCohortRepo = &MockCohortRepository{}
	suite.mockAuditRepo = &MockAuditLogsRepository{}
	suite.service = NewCohortService(suite.mockCohortRepo, NewAuditService(suite.mockAuditRepo))

	suite.tenantID = uuid.New()
	suite.actorID = uuid.New()

	suite.mockCohortRepo.Test(suite.T())
	suite.mockAuditRepo.Test(suite.T())
}

func (suite *CohortServiceTestSuite) TearDownTest() {
	suite.mockCohortRepo.AssertExpectations(suite.T())
}

func TestCohortServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CohortServiceTestSuite))
}

func (suite *CohortServiceTestSuite) TestCreate() {
	ctx := context.Background()

	suite.mockCohortRepo.On("Create", ctx, mock.AnythingOfType("*models.Cohort")).Return(nil).Run(func(args mock.Arguments) {
		cohort := args.Get(1).(*models.Cohort)
		assert.Equal(suite.T(), suite.tenantID, cohort.TenantID)
		assert.Equal(suite.T(), "Sales team", cohort.Name)
	})
	suite.mockAuditRepo.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.AuditLog)
		assert.Equal(suite.T(), models.ActionCohortCreate, entry.Action)
	})

	cohort, err := suite.service.Create(ctx, suite.tenantID, &suite.actorID, &CreateCohortRequest{Name: "Sales team"})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Sales team", cohort.Name)
}

func (suite *CohortServiceTestSuite) TestCreate_MissingName() {
	cohort, err := suite.service.Create(context.Background(), suite.tenantID, &suite.actorID, &CreateCohortRequest{})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cohort)
}

func (suite *CohortServiceTestSuite) TestAddMember_VerifiesCohortInTenant() {
	ctx := context.Background()
	cohortID := uuid.New()
	employeeID := uuid.New()

	suite.mockCohortRepo.On("GetByID", ctx, suite.tenantID, cohortID).Return(&models.Cohort{
		ID: cohortID, TenantID: suite.tenantID, Name: "Sales team",
	}, nil)
	suite.mockCohortRepo.On("AddMember", ctx, suite.tenantID, cohortID, employeeID).Return(nil)

	err := suite.service.AddMember(ctx, suite.tenantID, cohortID, employeeID)
	assert.NoError(suite.T(), err)
}

func (suite *CohortServiceTestSuite) TestAddMember_ForeignCohortIsNotFound() {
	ctx := context.Background()
	cohortID := uuid.New()

	suite.mockCohortRepo.On("GetByID", ctx, suite.tenantID, cohortID).Return(nil, pgx.ErrNoRows)

	err := suite.service.AddMember(ctx, suite.tenantID, cohortID, uuid.New())
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	suite.mockCohortRepo.AssertNotCalled(suite.T(), "AddMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CohortServiceTestSuite) TestDelete_WritesAudit() {
	ctx := context.Background()
	cohortID := uuid.New()

	suite.mockCohortRepo.On("Delete", ctx, suite.tenantID, cohortID).Return(nil)
	suite.mockAuditRepo.On("Create", ctx, mock.AnythingOfType("*models.AuditLog")).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.AuditLog)
		assert.Equal(suite.T(), models.ActionCohortDelete, entry.Action)
		assert.Equal(suite.T(), cohortID.String(), entry.EntityID)
	})

	err := suite.service.Delete(ctx, suite.tenantID, cohortID, &suite.actorID)
	assert.NoError(suite.T(), err)
}

func (suite *CohortServiceTestSuite) TestMemberIDs() {
	ctx := context.Background()
	cohortID := uuid.New()
	members := []uuid.UUID{uuid.New(), uuid.New()}

	suite.mockCohortRepo.On("GetByID", ctx, suite.tenantID, cohortID).Return(&models.Cohort{
		ID: cohortID, TenantID: suite.tenantID,
	}, nil)
	suite.mockCohortRepo.On("ListMemberIDs", ctx, suite.tenantID, cohortID).Return(members, nil)

	ids, err := suite.service.MemberIDs(ctx, suite.tenantID, cohortID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), members, ids)
}
