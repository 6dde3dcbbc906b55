package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"taldaor/internal/authprovider"
	"taldaor/internal/models"
)

type mockIncidentRepo struct {
	mock.Mock
}

func (m *mockIncidentRepo) Create(ctx context.Context, incident *models.ProvisioningIncident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *mockIncidentRepo) ListUnresolved(ctx context.Context, limit int) ([]*models.ProvisioningIncident, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProvisioningIncident), args.Error(1)
}

func (m *mockIncidentRepo) MarkResolved(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type mockAdminClient struct {
	mock.Mock
}

func (m *mockAdminClient) CreateUser(ctx context.Context, email, password string, role models.Role) (*authprovider.Identity, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Identity), args.Error(1)
}

func (m *mockAdminClient) InviteByEmail(ctx context.Context, email string, role models.Role, redirectTo string) (*authprovider.Identity, error) {
	args := m.Called(ctx, email, role, redirectTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Identity), args.Error(1)
}

func (m *mockAdminClient) GetUserByEmail(ctx context.Context, email string) (*authprovider.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Identity), args.Error(1)
}

func (m *mockAdminClient) ResendConfirmation(ctx context.Context, email, redirectTo string) error {
	args := m.Called(ctx, email, redirectTo)
	return args.Error(0)
}

func (m *mockAdminClient) SendPasswordRecovery(ctx context.Context, email, redirectTo string) error {
	args := m.Called(ctx, email, redirectTo)
	return args.Error(0)
}

func (m *mockAdminClient) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ReconcilerTestSuite struct {
	suite.Suite
	mockIncidents *mockIncidentRepo
	mockProfiles  *mockProfileRepo
	mockProvider  *mockAdminClient
	reconciler    *Reconciler
}

func (suite *ReconcilerTestSuite) SetupTest() {
	suite.mockIncidents = &mockIncidentRepo{}
	suite.mockProfiles = &mockProfileRepo{}
	suite.mockProvider = &mockAdminClient{}
	suite.reconciler = NewReconciler(suite.mockIncidents, suite.mockProfiles, suite.mockProvider)

	suite.mockIncidents.Test(suite.T())
	suite.mockProfiles.Test(suite.T())
	suite.mockProvider.Test(suite.T())
}

func (suite *ReconcilerTestSuite) TearDownTest() {
	suite.mockIncidents.AssertExpectations(suite.T())
	suite.mockProfiles.AssertExpectations(suite.T())
	suite.mockProvider.AssertExpectations(suite.T())
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (suite *ReconcilerTestSuite) TestRun_RetriesUpsertAndResolves() {
	ctx := context.Background()
	identityID := uuid.New()
	incident := &models.ProvisioningIncident{
		ID:         uuid.New(),
		Email:      "user@example.com",
		IdentityID: identityID,
		Role:       models.RoleTenant,
	}
	identity := &authprovider.Identity{ID: identityID, Email: "user@example.com"}

	suite.mockIncidents.On("ListUnresolved", ctx, reconcileBatchSize).Return([]*models.ProvisioningIncident{incident}, nil)
	suite.mockProvider.On("GetUserByEmail", ctx, "user@example.com").Return(identity, nil)
	suite.mockProfiles.On("Upsert", ctx, mock.AnythingOfType("*models.Profile")).Return(nil).Run(func(args mock.Arguments) {
		profile := args.Get(1).(*models.Profile)
		assert.Equal(suite.T(), identityID, profile.ID)
		assert.Equal(suite.T(), "user@example.com", profile.Email)
		assert.Equal(suite.T(), models.RoleTenant, profile.Role)
	})
	suite.mockIncidents.On("MarkResolved", ctx, incident.ID).Return(nil)

	err := suite.reconciler.Run(ctx)
	assert.NoError(suite.T(), err)
}

func (suite *ReconcilerTestSuite) TestRun_IdentityGoneResolvesWithoutUpsert() {
	ctx := context.Background()
	incident := &models.ProvisioningIncident{
		ID:         uuid.New(),
		Email:      "deleted@example.com",
		IdentityID: uuid.New(),
		Role:       models.RoleTenant,
	}

	suite.mockIncidents.On("ListUnresolved", ctx, reconcileBatchSize).Return([]*models.ProvisioningIncident{incident}, nil)
	suite.mockProvider.On("GetUserByEmail", ctx, "deleted@example.com").Return(nil, nil)
	suite.mockIncidents.On("MarkResolved", ctx, incident.ID).Return(nil)

	err := suite.reconciler.Run(ctx)
	assert.NoError(suite.T(), err)
	suite.mockProfiles.AssertNotCalled(suite.T(), "Upsert", mock.Anything, mock.Anything)
}

func (suite *ReconcilerTestSuite) TestRun_UpsertFailureLeavesIncidentOpen() {
	ctx := context.Background()
	identityID := uuid.New()
	incident := &models.ProvisioningIncident{
		ID:         uuid.New(),
		Email:      "user@example.com",
		IdentityID: identityID,
		Role:       models.RoleAdmin,
	}
	identity := &authprovider.Identity{ID: identityID, Email: "user@example.com"}

	suite.mockIncidents.On("ListUnresolved", ctx, reconcileBatchSize).Return([]*models.ProvisioningIncident{incident}, nil)
	suite.mockProvider.On("GetUserByEmail", ctx, "user@example.com").Return(identity, nil)
	suite.mockProfiles.On("Upsert", ctx, mock.AnythingOfType("*models.Profile")).Return(errors.New("still broken"))

	err := suite.reconciler.Run(ctx)
	assert.NoError(suite.T(), err)
	suite.mockIncidents.AssertNotCalled(suite.T(), "MarkResolved", mock.Anything, mock.Anything)
}

func (suite *ReconcilerTestSuite) TestRun_EmptyBatchIsNoop() {
	ctx := context.Background()

	suite.mockIncidents.On("ListUnresolved", ctx, reconcileBatchSize).Return([]*models.ProvisioningIncident{}, nil)

	err := suite.reconciler.Run(ctx)
	assert.NoError(suite.T(), err)
}

func (suite *ReconcilerTestSuite) TestRun_ListFailureSurfaces() {
	ctx := context.Background()

	suite.mockIncidents.On("ListUnresolved", ctx, reconcileBatchSize).Return(nil, errors.New("query failed"))

	err := suite.reconciler.Run(ctx)
	assert.Error(suite.T(), err)
}
