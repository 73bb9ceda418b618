package repositories

import (
	"context"

	"media-pipeline/internal/domain/dto"
)

// CMSNotifier posts the aggregated asset record to the CMS callback and
// reports the HTTP status it answered with.
type CMSNotifier interface {
	Notify(ctx context.Context, ref dto.CMSReference) (int, error)
}
