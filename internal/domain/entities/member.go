package entities

// AccountMeta é um par chave/valor extra de uma conta
type AccountMeta struct {
	ID    uint
	Guid  string
	Meta  string
	Value string
}

// Member é a visão de leitura de uma conta com seus metadados.
// Não é persistido.
type Member struct {
	*Account
	Meta []*AccountMeta
}

// NewMember compõe um Member
func NewMember(account *Account, meta []*AccountMeta) *Member {
	if meta == nil {
		meta = []*AccountMeta{}
	}
	return &Member{Account: account, Meta: meta}
}

// MetaValue retorna o valor de uma chave de meta ou "" quando ausente
func (m *Member) MetaValue(key string) string {
	for _, meta := range m.Meta {
		if meta.Meta == key {
			return meta.Value
		}
	}
	return ""
}
