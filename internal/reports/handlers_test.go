package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	lastYear  int
	lastLimit int
}

func (s *stubStore) MonthlyRevenue(_ context.Context, year int) ([]RevenuePoint, error) {
	s.lastYear = year
	return []RevenuePoint{{Month: "2024-01", Revenue: 35400}}, nil
}

func (s *stubStore) StatusCounts(_ context.Context) ([]StatusCount, error) {
	return nil, nil
}

func (s *stubStore) TopSpaces(_ context.Context, limit int) ([]TopSpace, error) {
	s.lastLimit = limit
	return nil, nil
}

func TestRevenueParsesYear(t *testing.T) {
	store := &stubStore{}
	h := &Handler{Store: store}

	rec := httptest.NewRecorder()
	h.Revenue(rec, httptest.NewRequest(http.MethodGet, "/revenue?year=2024", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2024, store.lastYear)

	var body struct {
		Data []RevenuePoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, 35400.0, body.Data[0].Revenue)
}

func TestRevenueRejectsAbsurdYear(t *testing.T) {
	h := &Handler{Store: &stubStore{}}
	rec := httptest.NewRecorder()
	h.Revenue(rec, httptest.NewRequest(http.MethodGet, "/revenue?year=99", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusReturnsEmptyArray(t *testing.T) {
	h := &Handler{Store: &stubStore{}}
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestTopSpacesClampsLimit(t *testing.T) {
	store := &stubStore{}
	h := &Handler{Store: store}
	rec := httptest.NewRecorder()
	h.TopSpaces(rec, httptest.NewRequest(http.MethodGet, "/top-spaces?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, maxTopSpaces, store.lastLimit)
}
