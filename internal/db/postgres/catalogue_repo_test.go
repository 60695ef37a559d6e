package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CapeTravel/internal/core/catalogue"
)

func createTestPlace(t *testing.T, db *sql.DB, name string, lat, lng float64) int64 {
	var id int64
	err := db.QueryRow(`
		INSERT INTO places (name, description, latitude, longitude)
		VALUES ($1, 'test place', $2, $3)
		RETURNING id
	`, name, lat, lng).Scan(&id)
	require.NoError(t, err, "Failed to create test place")
	return id
}

func cleanupPlaces(t *testing.T, db *sql.DB) {
	_, err := db.Exec("DELETE FROM places WHERE name LIKE 'test-%'")
	require.NoError(t, err, "Failed to cleanup places")
}

func TestCatalogueRepo_SeededPlaces(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	repo := NewCatalogueRepository(db)
	places, err := repo.ListPlaces(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(places))
	for _, p := range places {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "Table Mountain")
	assert.Contains(t, names, "Bo-Kaap")
}

func TestCatalogueRepo_Comments(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	defer cleanupPlaces(t, db)

	repo := NewCatalogueRepository(db)
	ctx := context.Background()
	placeID := createTestPlace(t, db, "test-comments", -33.9, 18.4)

	first := &catalogue.Comment{PlaceID: placeID, Author: "Ann", Content: "first"}
	require.NoError(t, repo.CreateComment(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &catalogue.Comment{PlaceID: placeID, Author: "Ben", Content: "second"}
	require.NoError(t, repo.CreateComment(ctx, second))

	list, err := repo.ListComments(ctx, placeID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Content, "newest first")
}

func TestCatalogueRepo_CreateComment_UnknownPlace(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()

	repo := NewCatalogueRepository(db)
	err := repo.CreateComment(context.Background(), &catalogue.Comment{PlaceID: 999999999, Author: "Ann", Content: "hi"})
	assert.ErrorIs(t, err, catalogue.ErrNotFound)
}

func TestCatalogueRepo_Exists(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	defer cleanupPlaces(t, db)

	repo := NewCatalogueRepository(db)
	ctx := context.Background()
	placeID := createTestPlace(t, db, "test-exists", -33.9, 18.4)

	found, err := repo.PlaceExists(ctx, placeID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.PlaceExists(ctx, 999999999)
	require.NoError(t, err)
	assert.False(t, found)

	place, err := repo.GetPlace(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, "test-exists", place.Name)
	assert.Nil(t, place.ImageURL)

	_, err = repo.GetPlace(ctx, 999999999)
	assert.ErrorIs(t, err, catalogue.ErrNotFound)
}
