package entities

// Oauth guarda as credenciais de uma conta
type Oauth struct {
	Guid            string
	ResourceOwnerID string
	PasswordHash    string
	Enabled         bool
}

// HasPassword indica se a conta possui senha local
func (o *Oauth) HasPassword() bool {
	return o.PasswordHash != ""
}
