package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate cria ou atualiza as tabelas de membros
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&AccountModel{},
		&OauthModel{},
		&ProviderModel{},
		&AccountMetaModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate members tables: %w", err)
	}
	return nil
}

// MissingTables lista as tabelas de membros que ainda não existem
func MissingTables(db *gorm.DB) []string {
	var missing []string
	for _, model := range []interface{ TableName() string }{
		AccountModel{},
		OauthModel{},
		ProviderModel{},
		AccountMetaModel{},
	} {
		if !db.Migrator().HasTable(model.TableName()) {
			missing = append(missing, model.TableName())
		}
	}
	return missing
}
