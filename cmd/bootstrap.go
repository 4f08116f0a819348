package cmd

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5"

	"careops/database"
	"careops/domain/entities"
	"careops/repository"
)

// BootstrapOrganization creates an organization with a freshly minted API
// token. The plaintext token is returned exactly once; only its digest is
// stored, so a lost token means minting a new organization record.
func BootstrapOrganization(ctx context.Context, db *database.DB, name, contactEmail string) (*entities.Organization, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("organization name is required")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("failed to generate API token: %w", err)
	}
	token := hex.EncodeToString(raw)
	digest := sha256.Sum256([]byte(token))

	org := &entities.Organization{
		Name:           name,
		ContactEmail:   contactEmail,
		APITokenDigest: hex.EncodeToString(digest[:]),
	}

	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return repository.NewOrganizationRepositoryWithTx(tx).Create(ctx, org)
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create organization: %w", err)
	}

	return org, token, nil
}
