package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestFromViper(t *testing.T) {
	t.Run("aplica valores padrão", func(t *testing.T) {
		cfg, err := FromViper(newTestViper(nil))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "/admin/members", cfg.Members.AdminPath)
		assert.Equal(t, []string{"root", "admin"}, cfg.Members.AdminRoles)
		assert.Equal(t, "/dashboard", cfg.Members.DashboardURL)
		assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
		assert.Equal(t, "authentication/login.html", cfg.Members.Templates.Login)
		assert.Equal(t, "members_session", cfg.Members.SessionCookie)
	})

	t.Run("lê listas separadas por vírgula", func(t *testing.T) {
		cfg, err := FromViper(newTestViper(map[string]any{
			"MEMBERS_ADMIN_ROLES": " chief , editor,,",
			"MEMBERS_ROLES":       "participant:Participant, author",
			"MEMBERS_ADMIN_PATH":  "/extend/members/",
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"chief", "editor"}, cfg.Members.AdminRoles)
		assert.Equal(t, []string{"participant", "author"}, cfg.Members.Roles.Names())
		role, ok := cfg.Members.Roles.Find("author")
		require.True(t, ok)
		assert.Equal(t, "author", role.DisplayName)
		assert.Equal(t, "/extend/members", cfg.Members.AdminPath)
	})

	t.Run("erro sem roles de admin", func(t *testing.T) {
		_, err := FromViper(newTestViper(map[string]any{"MEMBERS_ADMIN_ROLES": " , "}))
		assert.Error(t, err)
	})

	t.Run("erro sem JWT_SECRET em produção", func(t *testing.T) {
		_, err := FromViper(newTestViper(map[string]any{"ENV": "production"}))
		assert.Error(t, err)
	})
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MEMBERS_DASHBOARD_URL", "/bolt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/bolt", cfg.Members.DashboardURL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "members", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=members sslmode=disable", d.DSN())
}
