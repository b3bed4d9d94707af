package services

import (
	"io"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/triggerNode/BuxTax/src/model"
	"github.com/triggerNode/BuxTax/src/models"
)

// UploadPreview is what the mapping screen needs before the user confirms an upload.
type UploadPreview struct {
	Headers          []string             `json:"headers"`
	SuggestedMapping models.ColumnMapping `json:"suggested_mapping"`
	Format           string               `json:"format"`
	Problems         []string             `json:"problems"`
}

// UploadResult is returned after an upload has been parsed and stored.
type UploadResult struct {
	Upload  *model.PayoutUpload `json:"upload"`
	Message string              `json:"message"`
}

// UploadService parses payout CSVs, stores them per user and serves the reports built on
// the latest upload.
type UploadService interface {
	PreviewHeaders(fileReader io.Reader) (*UploadPreview, error)
	ProcessUpload(fileReader io.Reader, filename, userID string, mapping *models.ColumnMapping) (*UploadResult, error)
	GetLatestUpload(userID string) (*model.PayoutUpload, error)
	GetPulse(userID, window string) (models.PulseSummary, error)
	GetGoalProgress(userID string, targetUSD float64, deadline time.Time) (models.GoalProgress, error)
	ExportLatest(w io.Writer, userID string) error
	DeleteUploads(userID string) (int64, error)
	InvalidateUserCache(userID string)
}

// EntitlementService answers whether a user has paid access and applies billing events.
type EntitlementService interface {
	HasActiveEntitlement(userID string) (bool, error)
	GetEntitlement(userID string) (*model.Entitlement, error)
	ApplyStripeEvent(event stripe.Event) error
}
