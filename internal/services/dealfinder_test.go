package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camptrades/apiserver/config"
	"github.com/camptrades/apiserver/types"
)

func modelReply(t *testing.T, inner string) string {
	t.Helper()
	text, err := json.Marshal(inner)
	require.NoError(t, err)
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%s}]}}]}`, text)
}

func newTestDealFinder(baseURL string) *DealFinder {
	return NewDealFinder(config.DealFinderConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: baseURL,
	})
}

func dealItems() []types.Item {
	return []types.Item{
		{ID: "item_1", Title: "Calculus Textbook", Price: 25, Category: types.CategoryBooks, Condition: types.ConditionUsed},
		{ID: "item_2", Title: "Desk Lamp", Price: 40, Category: types.CategoryFurniture, Condition: types.ConditionGood},
	}
}

func TestFindBestDeal_PicksListedItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "test-model")
		fmt.Fprint(w, modelReply(t, `{"id":"item_2"}`))
	}))
	defer srv.Close()

	id, err := newTestDealFinder(srv.URL).FindBestDeal(context.Background(), "a lamp for my desk", dealItems())
	require.NoError(t, err)
	assert.Equal(t, "item_2", id)
}

func TestFindBestDeal_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(t, `{"id":null}`))
	}))
	defer srv.Close()

	id, err := newTestDealFinder(srv.URL).FindBestDeal(context.Background(), "a spaceship", dealItems())
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindBestDeal_InventedIDIsDiscarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelReply(t, `{"id":"item_999"}`))
	}))
	defer srv.Close()

	id, err := newTestDealFinder(srv.URL).FindBestDeal(context.Background(), "anything", dealItems())
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindBestDeal_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestDealFinder(srv.URL).FindBestDeal(context.Background(), "anything", dealItems())
	assert.Error(t, err)
}

func TestDealFinder_Enabled(t *testing.T) {
	assert.True(t, newTestDealFinder("http://example.invalid").Enabled())
	assert.False(t, NewDealFinder(config.DealFinderConfig{}).Enabled())
}
