package testutil

import (
	"fmt"
	"time"

	"gaznger/models"

	"github.com/shopspring/decimal"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(email string) *models.User {
	return &models.User{
		Email:        email,
		Phone:        "+2348000000000",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName:  "Test User",
		Gender:       models.GenderMale,
		ProfileImage: models.DefaultMaleImage,
	}
}

// CreateTestPointEntry creates an immediate (settled) ledger entry
func CreateTestPointEntry(userID, change int64) *models.PointEntry {
	return &models.PointEntry{
		UserID:      userID,
		Change:      change,
		Kind:        models.KindForChange(change),
		Description: "test entry",
		Settled:     true,
	}
}

// CreateTestPendingEntry creates an unsettled entry whose pending window
// opened in the past and which has not expired
func CreateTestPendingEntry(userID, change int64, pendingSince, expiresIn time.Duration) *models.PointEntry {
	pendingUntil := time.Now().Add(-pendingSince)
	expiresAt := time.Now().Add(expiresIn)
	return &models.PointEntry{
		UserID:       userID,
		Change:       change,
		Kind:         models.KindForChange(change),
		Description:  "test pending entry",
		PendingUntil: &pendingUntil,
		ExpiresAt:    &expiresAt,
	}
}

// CreateTestFuelType creates a fuel type with a unique name
func CreateTestFuelType(name string) *models.FuelType {
	return &models.FuelType{
		Name:         name,
		Unit:         "L",
		PricePerUnit: decimal.NewFromInt(650),
	}
}

// CreateTestStation creates a station with no fuels
func CreateTestStation(name string) *models.Station {
	return &models.Station{
		Name:      name,
		Address:   fmt.Sprintf("1 %s Road", name),
		State:     "Lagos",
		LGA:       "Ikeja",
		Latitude:  6.6018,
		Longitude: 3.3515,
		Verified:  true,
	}
}
