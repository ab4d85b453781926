package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightdesk/quote/internal/models"
)

func TestSupplierService_Match(t *testing.T) {
	database := setupTestDB(t, "testdb_supplier_service_match")
	svc := NewSupplierService(database)
	ctx := context.Background()

	suppliers := []any{
		models.Supplier{Base: models.Base{ID: "s1"}, Name: "Exact", Lanes: []models.SupplierLane{
			{Direction: models.DirectionExport, LoadCountry: "DE", DeliveryCountry: "US"},
		}, Contacts: []models.SupplierContact{{ID: "c1", Email: "ops@exact.test", Language: models.LanguageDE}}},
		models.Supplier{Base: models.Base{ID: "s2"}, Name: "Wildcard", Lanes: []models.SupplierLane{
			{Direction: models.DirectionExport},
		}, Contacts: []models.SupplierContact{{ID: "c2", Email: "desk@wild.test"}}},
		models.Supplier{Base: models.Base{ID: "s3"}, Name: "Import only", Lanes: []models.SupplierLane{
			{Direction: models.DirectionImport, LoadCountry: "DE", DeliveryCountry: "US"},
		}},
		models.Supplier{Base: models.Base{ID: "s4"}, Name: "Gone", Deleted: true, Lanes: []models.SupplierLane{
			{Direction: models.DirectionExport},
		}},
	}
	_, err := database.Collection("suppliers").InsertMany(ctx, suppliers)
	require.NoError(t, err)

	matched, err := svc.Match(ctx, models.Lane{Direction: models.DirectionExport, LoadCountry: "de", DeliveryCountry: "US"})
	require.NoError(t, err)
	var names []string
	for _, s := range matched {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Exact", "Wildcard"}, names)

	for _, s := range matched {
		for _, c := range s.Contacts {
			assert.Equal(t, s.ID, c.SupplierID)
		}
	}
}

func TestSupplierService_ContactLookups(t *testing.T) {
	database := setupTestDB(t, "testdb_supplier_service_contacts")
	svc := NewSupplierService(database)
	ctx := context.Background()

	_, err := database.Collection("suppliers").InsertOne(ctx, models.Supplier{
		Base: models.Base{ID: "s1"}, Name: "Carrier",
		Contacts: []models.SupplierContact{
			{ID: "c1", Email: "Anna@Carrier.test", Language: models.LanguageDE},
			{ID: "c2", Email: "bob@carrier.test", Deleted: true},
		},
	})
	require.NoError(t, err)

	contact, err := svc.FindContactByEmail(ctx, " anna@CARRIER.test")
	require.NoError(t, err)
	assert.Equal(t, "c1", contact.ID)
	assert.Equal(t, "anna@carrier.test", contact.Email)
	assert.Equal(t, "s1", contact.SupplierID)
	assert.Equal(t, models.LanguageDE, contact.Language)

	_, err = svc.FindContactByEmail(ctx, "nobody@carrier.test")
	assert.True(t, errors.Is(err, ErrNotFound))

	byID, err := svc.FindContactsByIDs(ctx, []string{"c2", "c9"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.True(t, byID["c2"].Deleted)
}
