package repositories

import (
	"context"

	"github.com/zatekoja/clinicassistant/internal/domain/entities"
)

// AdminCredentialRepository loads the static admin credential list
type AdminCredentialRepository interface {
	// LoadAll reads every admin entry. Implementations must not cache the list.
	LoadAll(ctx context.Context) ([]entities.AdminCredential, error)
}
