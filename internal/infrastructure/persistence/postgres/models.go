package postgres

import "time"

// AccountModel é o model GORM para contas de membros
type AccountModel struct {
	Guid        string    `gorm:"column:guid;type:varchar(36);primaryKey"`
	Email       string    `gorm:"column:email;type:varchar(128);uniqueIndex;not null"`
	Displayname *string   `gorm:"column:displayname;type:varchar(32)"`
	Enabled     bool      `gorm:"column:enabled;not null;default:false;index"`
	Roles       []string  `gorm:"column:roles;type:varchar(1024);serializer:json"`
	LastSeen    time.Time `gorm:"column:lastseen"`
	LastIP      *string   `gorm:"column:lastip;type:varchar(32)"`
}

func (AccountModel) TableName() string {
	return "members_account"
}

// OauthModel guarda credenciais; uma linha por conta
type OauthModel struct {
	Guid            string  `gorm:"column:guid;type:varchar(36);primaryKey"`
	ResourceOwnerID string  `gorm:"column:resource_owner_id;type:varchar(128);index"`
	Password        *string `gorm:"column:password;type:varchar(255)"`
	Enabled         bool    `gorm:"column:enabled;not null;default:false"`
}

func (OauthModel) TableName() string {
	return "members_oauth"
}

// ProviderModel liga uma conta a um provider de identidade
type ProviderModel struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Guid            string    `gorm:"column:guid;type:varchar(36);index;not null"`
	Provider        string    `gorm:"column:provider;type:varchar(64);not null"`
	ResourceOwnerID string    `gorm:"column:resource_owner_id;type:varchar(128)"`
	LastUpdate      time.Time `gorm:"column:lastupdate"`
}

func (ProviderModel) TableName() string {
	return "members_provider"
}

// AccountMetaModel guarda pares chave/valor de uma conta
type AccountMetaModel struct {
	ID    uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Guid  string `gorm:"column:guid;type:varchar(36);index;not null"`
	Meta  string `gorm:"column:meta;type:varchar(64);not null"`
	Value string `gorm:"column:value;type:text"`
}

func (AccountMetaModel) TableName() string {
	return "members_account_meta"
}
