package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-system/internal/status"
	"queue-system/models"
)

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, models.CategoryRestaurant, registry.Resolve(models.CategoryRestaurant).Category())
	assert.Equal(t, models.CategoryHospital, registry.Resolve(models.CategoryHospital).Category())
	assert.Equal(t, models.CategoryBank, registry.Resolve(models.CategoryBank).Category())
	assert.Equal(t, models.CategoryGeneral, registry.Resolve(models.CategoryGeneral).Category())

	// Unknown categories fall back to general.
	assert.Equal(t, models.CategoryGeneral, registry.Resolve("karaoke").Category())
}

func TestGeneralMatchResource(t *testing.T) {
	h := &GeneralHandler{}

	// General queues have no resource step, even with candidates around.
	resource, err := h.MatchResource(models.Participant{}, []models.Resource{{ID: "r1"}}, "")
	assert.NoError(t, err)
	assert.Nil(t, resource)
}

func TestRestaurantMatchResource(t *testing.T) {
	h := &RestaurantHandler{}
	tables := []models.Resource{
		{ID: "t1", Name: "Table 1", Capacity: 2},
		{ID: "t2", Name: "Table 2", Capacity: 4},
		{ID: "t3", Name: "Table 3", Capacity: 8},
	}

	// Party of 3 skips the 2-top, takes the 4-top.
	matched, err := h.MatchResource(models.Participant{PartySize: 3}, tables, "")
	require.NoError(t, err)
	assert.Equal(t, "t2", matched.ID)

	// Party of 2 takes the first table that fits.
	matched, err = h.MatchResource(models.Participant{PartySize: 2}, tables, "")
	require.NoError(t, err)
	assert.Equal(t, "t1", matched.ID)

	// No table holds a party of 10.
	_, err = h.MatchResource(models.Participant{PartySize: 10}, tables, "")
	assert.ErrorIs(t, err, status.ErrNoAvailableResource)
}

func TestRestaurantValidateJoin(t *testing.T) {
	h := &RestaurantHandler{}

	assert.NoError(t, h.ValidateJoin(&JoinRequest{Name: "Khamla", PartySize: 4}))
	assert.Error(t, h.ValidateJoin(&JoinRequest{Name: "Khamla"}))
	assert.Error(t, h.ValidateJoin(&JoinRequest{Name: "Khamla", PartySize: 51}))
	assert.Error(t, h.ValidateJoin(&JoinRequest{PartySize: 4}))
}

func TestHospitalMatchResource(t *testing.T) {
	h := &HospitalHandler{}
	doctors := []models.Resource{
		{ID: "d1", Specialty: "cardiology"},
		{ID: "d2", Specialty: "dermatology"},
	}

	matched, err := h.MatchResource(models.Participant{MedicalField: "dermatology"}, doctors, "")
	require.NoError(t, err)
	assert.Equal(t, "d2", matched.ID)

	// Strict specialty match, no fallback to an unrelated doctor.
	_, err = h.MatchResource(models.Participant{MedicalField: "neurology"}, doctors, "")
	assert.ErrorIs(t, err, status.ErrNoAvailableResource)
}

func TestBankMatchResource(t *testing.T) {
	h := &BankHandler{}
	counters := []models.Resource{
		{ID: "c1", Name: "Counter 1"},
		{ID: "c2", Name: "Counter 2"},
	}

	// Without a hint the first available counter serves.
	matched, err := h.MatchResource(models.Participant{}, counters, "")
	require.NoError(t, err)
	assert.Equal(t, "c1", matched.ID)

	// A hint pins the specific counter.
	matched, err = h.MatchResource(models.Participant{}, counters, "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", matched.ID)

	// A hint for a counter that is not available fails rather than falling
	// back to another one.
	_, err = h.MatchResource(models.Participant{}, counters, "c9")
	assert.ErrorIs(t, err, status.ErrNoAvailableResource)

	_, err = h.MatchResource(models.Participant{}, nil, "")
	assert.ErrorIs(t, err, status.ErrNoAvailableResource)
}

func TestRequiredCapacity(t *testing.T) {
	assert.Equal(t, 4, (&RestaurantHandler{}).RequiredCapacity(models.Participant{PartySize: 4}))
	assert.Equal(t, 1, (&RestaurantHandler{}).RequiredCapacity(models.Participant{}))
	assert.Equal(t, 1, (&HospitalHandler{}).RequiredCapacity(models.Participant{}))
	assert.Equal(t, 1, (&BankHandler{}).RequiredCapacity(models.Participant{}))
}
