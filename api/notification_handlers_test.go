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

func TestListNotifications(t *testing.T) {
	handler, uow := newTestServer()

	uow.NotificationRepo.On("List", mock.Anything, 50).Return([]*entities.Notification{
		{
			ID:        61,
			Kind:      entities.NotificationKindRunFailed,
			Recipient: "admin@sunrise-care.example",
			Subject:   "Automation run failed: Weekly SIL billing",
			Status:    entities.NotificationStatusSent,
		},
	}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/notifications", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []*entities.Notification
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, entities.NotificationKindRunFailed, notifications[0].Kind)
}

func TestListNotifications_CustomLimit(t *testing.T) {
	handler, uow := newTestServer()
	uow.NotificationRepo.On("List", mock.Anything, 10).Return([]*entities.Notification{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/notifications?limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	uow.NotificationRepo.AssertExpectations(t)
}

func TestListNotifications_RejectsOversizedLimit(t *testing.T) {
	handler, uow := newTestServer()

	rec := doRequest(t, handler, http.MethodGet, "/api/notifications?limit=10000", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uow.NotificationRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
