package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/app/tableview"
)

func TestPagedResponse(t *testing.T) {
	rows := []model.User{
		{Identifier: "c@x.io", FullName: "Carol"},
		{Identifier: "a@x.io", FullName: "Alice"},
		{Identifier: "b@x.io", FullName: "Bob"},
	}

	t.Run("without page parameter the full set passes through", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/user/all", nil)

		result := pagedResponse(r, rows, tableview.Options{})

		assert.Equal(t, rows, result)
	})

	t.Run("page parameter triggers a sorted projection", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/user/all?page=1&pageSize=2&sort=Identifier", nil)

		result := pagedResponse(r, rows, tableview.Options{})

		page, ok := result.(model.Page[model.User])
		require.True(t, ok)
		assert.Equal(t, 3, page.TotalFiltered)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Rows, 2)
		assert.Equal(t, "a@x.io", page.Rows[0].Identifier)
		assert.Equal(t, "b@x.io", page.Rows[1].Identifier)
	})

	t.Run("descending direction reverses the order", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/user/all?page=1&sort=Identifier&direction=desc", nil)

		result := pagedResponse(r, rows, tableview.Options{})

		page, ok := result.(model.Page[model.User])
		require.True(t, ok)
		assert.Equal(t, "c@x.io", page.Rows[0].Identifier)
	})

	t.Run("search narrows the result", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/user/all?page=1&search=alice", nil)

		result := pagedResponse(r, rows, tableview.Options{})

		page, ok := result.(model.Page[model.User])
		require.True(t, ok)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "a@x.io", page.Rows[0].Identifier)
	})
}
