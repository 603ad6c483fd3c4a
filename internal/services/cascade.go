package services

import (
	"context"
	"fmt"

	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
)

// RegisterCascade remove os registros dependentes (oauth, providers e meta)
// antes da remoção da conta. Roda na mesma transação do delete.
func RegisterCascade(
	dispatcher *events.Dispatcher,
	oauths repositories.OauthRepository,
	providers repositories.ProviderRepository,
	metas repositories.AccountMetaRepository,
) {
	dispatcher.Subscribe(events.AccountPreDelete, func(ctx context.Context, event *events.StorageEvent) error {
		guid := event.Account.Guid

		if err := oauths.DeleteByGuid(ctx, guid); err != nil {
			return fmt.Errorf("failed to delete oauth of %s: %w", guid, err)
		}
		if err := providers.DeleteByGuid(ctx, guid); err != nil {
			return fmt.Errorf("failed to delete providers of %s: %w", guid, err)
		}
		if err := metas.DeleteByGuid(ctx, guid); err != nil {
			return fmt.Errorf("failed to delete meta of %s: %w", guid, err)
		}
		return nil
	})
}
