package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careops/domain/entities"
)

func testHouse() *entities.House {
	return &entities.House{
		ID:             9,
		OrganizationID: 7,
		Name:           "Acacia Court",
		AddressLine:    "12 Acacia Ct",
		Suburb:         "Greenslopes",
		State:          "QLD",
		Postcode:       "4120",
		Capacity:       4,
		Status:         entities.HouseStatusActive,
	}
}

func TestCreateHouse(t *testing.T) {
	handler, uow := newTestServer()

	uow.HouseRepo.On("Create", mock.Anything, mock.MatchedBy(func(h *entities.House) bool {
		return h.Name == "Acacia Court" && h.AddressLine == "12 Acacia Ct"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.House).ID = 9
	})

	rec := doRequest(t, handler, http.MethodPost, "/api/houses", map[string]any{
		"name":         "Acacia Court",
		"address_line": "12 Acacia Ct",
		"suburb":       "Greenslopes",
		"state":        "QLD",
		"postcode":     "4120",
		"capacity":     4,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var house entities.House
	require.NoError(t, json.Unmarshal(env.Data, &house))
	assert.Equal(t, int64(9), house.ID)
	assert.Equal(t, "Acacia Court", house.Name)
	assert.Equal(t, 1, uow.Commits)
}

func TestCreateHouse_MissingName(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/api/houses", map[string]any{
		"address_line": "12 Acacia Ct",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decodeEnvelope(t, rec).Error)
	uow.HouseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 0, uow.Commits)
}

func TestCreateHouse_RejectsUnknownFields(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodPost, "/api/houses", map[string]any{
		"name":         "Acacia Court",
		"address_line": "12 Acacia Ct",
		"landlord":     "should not be here",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uow.HouseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetHouse_NotFound(t *testing.T) {
	handler, uow := newTestServer()
	uow.HouseRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/houses/9", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "house not found", decodeEnvelope(t, rec).Error)
}

func TestGetHouse_InvalidID(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodGet, "/api/houses/acacia", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uow.HouseRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateHouse_PartialPatch(t *testing.T) {
	handler, uow := newTestServer()

	uow.HouseRepo.On("GetByID", mock.Anything, int64(9)).Return(testHouse(), nil)
	uow.HouseRepo.On("Update", mock.Anything, mock.MatchedBy(func(h *entities.House) bool {
		return h.ID == 9 && h.Name == "Acacia Court East" && h.Capacity == 4
	})).Return(nil)

	rec := doRequest(t, handler, http.MethodPatch, "/api/houses/9", map[string]any{
		"name": "Acacia Court East",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var house entities.House
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &house))
	assert.Equal(t, "Acacia Court East", house.Name)

	// Untouched fields survive the patch
	assert.Equal(t, "Greenslopes", house.Suburb)
	assert.Equal(t, 1, uow.Commits)
}

func TestUpdateHouse_RejectsUnknownStatus(t *testing.T) {
	handler, uow := newTestServer()
	uow.HouseRepo.On("GetByID", mock.Anything, int64(9)).Return(testHouse(), nil)

	rec := doRequest(t, handler, http.MethodPatch, "/api/houses/9", map[string]any{
		"status": "condemned",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid status", decodeEnvelope(t, rec).Error)
	uow.HouseRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteHouse(t *testing.T) {
	handler, uow := newTestServer()
	uow.HouseRepo.On("GetByID", mock.Anything, int64(9)).Return(testHouse(), nil)
	uow.HouseRepo.On("Delete", mock.Anything, int64(9)).Return(nil)

	rec := doRequest(t, handler, http.MethodDelete, "/api/houses/9", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)
	assert.Equal(t, 1, uow.Commits)
}

func TestDeleteHouse_NotFound(t *testing.T) {
	handler, uow := newTestServer()
	uow.HouseRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

	rec := doRequest(t, handler, http.MethodDelete, "/api/houses/9", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	uow.HouseRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Equal(t, 0, uow.Commits)
}

func TestListHouses(t *testing.T) {
	handler, uow := newTestServer()
	uow.HouseRepo.On("List", mock.Anything).Return([]*entities.House{testHouse()}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/houses", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var houses []*entities.House
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &houses))
	require.Len(t, houses, 1)
	assert.Equal(t, "Acacia Court", houses[0].Name)
	assert.Equal(t, 0, uow.Commits)
}
