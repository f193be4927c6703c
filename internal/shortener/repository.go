package shortener

import "context"

// Repository is the storage collaborator of the Allocator.
//
// Implementations must enforce short code uniqueness: Save returns
// ErrCodeTaken when the code exists. Lookups return ErrNotFound on a miss.
type Repository interface {
	ExistsByCode(ctx context.Context, code Code) (bool, error)
	GetByCode(ctx context.Context, code Code) (*Mapping, error)
	// FindByLongURL returns the oldest mapping for an exact normalized long URL.
	FindByLongURL(ctx context.Context, longURL string) (*Mapping, error)
	Save(ctx context.Context, mapping *Mapping) error
	// CountByOwner groups mappings that have an owner.
	CountByOwner(ctx context.Context) ([]OwnerCount, error)
}
